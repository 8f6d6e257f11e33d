package controllers

import (
	"time"

	"github.com/gmgifpe/asset-tracker/src/clients/fx"
	"github.com/gmgifpe/asset-tracker/src/clients/quotes"
	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/services"
	redis_utils "github.com/gmgifpe/asset-tracker/src/utils/redis"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

type Controller struct {
	DB *pgxpool.Pool

	UsersRepo        repositories.UserRepository
	AccountsRepo     repositories.AccountRepository
	AssetsRepo       repositories.AssetRepository
	TransactionsRepo repositories.TransactionRepository

	PortfolioService services.PortfolioServiceI
	PriceService     services.PriceServiceI
	ImportService    services.ImportServiceI
	ExportService    services.ExportServiceI

	TokenAuth *jwtauth.JWTAuth
	TokenTTL  time.Duration
}

// NewController wires the repositories, clients and services together.
// The redis handler may be nil when no cache is configured.
func NewController(cfg *config.Config, pool *pgxpool.Pool, gormDB *gorm.DB, cache *redis_utils.RedisHandler) *Controller {
	usersRepo := repositories.NewUserRepository(gormDB)
	accountsRepo := repositories.NewAccountRepository(pool)
	assetsRepo := repositories.NewAssetRepository(pool)
	transactionsRepo := repositories.NewTransactionRepository(pool)
	historyRepo := repositories.NewPriceHistoryRepository(pool)

	quoteClient := quotes.NewClient(cfg)
	fxClient := fx.NewClient(cfg)

	priceService := services.NewPriceService(
		assetsRepo, usersRepo, historyRepo, quoteClient, cache,
		time.Duration(cfg.ExternalClients.Quotes.CacheTTLMinutes)*time.Minute,
	)
	portfolioService := services.NewPortfolioService(
		usersRepo, accountsRepo, assetsRepo, transactionsRepo, priceService, fxClient,
	)
	importService := services.NewImportService(
		accountsRepo, assetsRepo, transactionsRepo, quoteClient, priceService,
	)
	exportService := services.NewExportService(
		accountsRepo, assetsRepo, transactionsRepo, portfolioService,
	)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &Controller{
		DB:               pool,
		UsersRepo:        usersRepo,
		AccountsRepo:     accountsRepo,
		AssetsRepo:       assetsRepo,
		TransactionsRepo: transactionsRepo,
		PortfolioService: portfolioService,
		PriceService:     priceService,
		ImportService:    importService,
		ExportService:    exportService,
		TokenAuth:        jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil),
		TokenTTL:         tokenTTL,
	}
}
