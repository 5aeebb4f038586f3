package app

import (
	"context"
	"filegate/internal/app/httpapp"
	"filegate/internal/config"
	adminhttp "filegate/internal/http/admin"
	gatehttp "filegate/internal/http/gate"
	adminservice "filegate/internal/services/admin"
	"filegate/internal/services/domains"
	"filegate/internal/services/redirect"
	"filegate/internal/services/verification"
	"filegate/internal/storage/objectstore"
	"filegate/internal/storage/postgres"
	"filegate/internal/storage/postgres/repositories"
	"filegate/internal/storage/protected"
	redisstore "filegate/internal/storage/redis"
	"log/slog"
)

type App struct {
	HTTPSrv *httpapp.App

	storage *postgres.Storage
	tokens  *redisstore.TokenStore
}

func New(
	log *slog.Logger,
	cfg *config.Config,
) *App {
	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		panic(err)
	}
	tokenStore := redisstore.NewTokenStore(&cfg.Redis, cfg.TokenTTL)

	accessKey, secretKey := cfg.Resource.AccessKey, cfg.Resource.SecretKey
	if cfg.Vault.Enabled {
		vaultClient, err := protected.NewVaultClient()
		if err != nil {
			panic(err)
		}
		creds, err := vaultClient.ObjectStoreCredentials(context.Background(), cfg.Vault.SecretPath)
		if err != nil {
			panic(err)
		}
		accessKey, secretKey = creds.AccessKey, creds.SecretKey
	}

	objectStore, err := objectstore.New(&cfg.Resource, accessKey, secretKey)
	if err != nil {
		panic(err)
	}

	domainRepo := repositories.NewDomainRepository(storage.Pool)
	emailLogRepo := repositories.NewEmailLogRepository(storage.Pool)
	adminRepo := repositories.NewAdminRepository(storage.Pool)

	gateService := domains.New(log, domainRepo)
	resolver := redirect.New(
		log,
		cfg.RedirectTemplate,
		objectStore,
		cfg.Resource.FilenamePrefix,
		cfg.Resource.FilenameExt,
	)
	verificationService := verification.New(
		log,
		tokenStore,
		gateService,
		resolver,
		emailLogRepo,
	)
	adminService := adminservice.New(
		log,
		adminRepo,
		emailLogRepo,
		cfg.Admin,
	)

	gateServer := gatehttp.New(log, verificationService)
	adminServer := adminhttp.New(log, adminService, gateService)

	httpApp := httpapp.New(log, gateServer, adminServer, cfg.HTTP)

	return &App{
		HTTPSrv: httpApp,
		storage: storage,
		tokens:  tokenStore,
	}
}

// Close releases the shared storage clients.
func (a *App) Close() {
	a.storage.CloseStorage()
	_ = a.tokens.Close()
}
