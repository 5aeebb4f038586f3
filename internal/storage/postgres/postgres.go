package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"os"
)

// Private config for using inside postgres storage and open connections
type config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Path     string
}

// Simple helper function to read an environment or return a default value
func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// Init initialize config instance
func (c *config) Init(storagePath string) {
	c.Path = storagePath
	c.Host = getEnv("DB_HOST", "localhost")
	c.Port = getEnv("DB_PORT", "5432")
	c.Username = getEnv("DB_USER", "postgres")
	c.Password = getEnv("DB_PASS", "postgres")
	c.Database = getEnv("DB_NAME", "filegate_db")
}

// Storage owns the process-wide connection pool shared by all repositories.
type Storage struct {
	conf config
	Pool *pgxpool.Pool
}

// New initialize an instance of storage db context
func New(storagePath string) (*Storage, error) {
	conf := config{}
	conf.Init(storagePath)
	pool, err := pgxpool.New(context.Background(), getConnString(conf))
	if err != nil {
		return nil, errors.New("error connecting to database: " + err.Error())
	}

	return &Storage{conf: conf, Pool: pool}, nil
}

// CloseStorage ends database pool connection
func (s *Storage) CloseStorage() {
	s.Pool.Close()
}

// getConnString Constructing database connection string
func getConnString(conf config) string {
	if conf.Path != "" {
		return fmt.Sprintf("postgres://%s?sslmode=disable", conf.Path)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", conf.Username, conf.Password, conf.Host, conf.Port, conf.Database)
}
