package config

import (
	"flag"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

type Config struct {
	Env              string         `yaml:"env" env-default:"local"`
	StoragePath      string         `yaml:"conn_string"`
	TokenTTL         time.Duration  `yaml:"token_ttl" env-default:"60s"`
	RedirectTemplate string         `yaml:"redirect_template" env-required:"true"`
	HTTP             HTTPConfig     `yaml:"http" env-required:"true"`
	Redis            RedisConfig    `yaml:"redis" env-required:"true"`
	Resource         ResourceConfig `yaml:"resource" env-required:"true"`
	Admin            AdminConfig    `yaml:"admin"`
	Vault            VaultConfig    `yaml:"vault"`
}

type HTTPConfig struct {
	Port        int           `yaml:"port" env-default:"8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ResourceConfig describes the object storage backend holding the gated file.
// AccessKey/SecretKey are used as-is unless Vault.Enabled, in which case they
// are fetched from the configured vault path at startup.
type ResourceConfig struct {
	Endpoint       string        `yaml:"endpoint" env-required:"true"`
	UseSSL         bool          `yaml:"use_ssl" env-default:"true"`
	Bucket         string        `yaml:"bucket" env-required:"true"`
	ObjectKey      string        `yaml:"object_key" env-required:"true"`
	FilenamePrefix string        `yaml:"filename_prefix" env-default:"document"`
	FilenameExt    string        `yaml:"filename_ext" env-default:"pdf"`
	GrantTTL       time.Duration `yaml:"grant_ttl" env-default:"60s"`
	AccessKey      string        `yaml:"access_key" env:"RESOURCE_ACCESS_KEY"`
	SecretKey      string        `yaml:"secret_key" env:"RESOURCE_SECRET_KEY"`
}

type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"1h"`
}

type VaultConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SecretPath string `yaml:"secret_path" env-default:"secret/data/filegate/objectstore"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config path does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// Priority: flag > env > default
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
