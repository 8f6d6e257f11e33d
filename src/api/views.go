package api

import (
	"net/http"
	"time"

	"github.com/gmgifpe/asset-tracker/src/api/controllers"
	handlers "github.com/gmgifpe/asset-tracker/src/api/handlers"
	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/database"
	"github.com/gmgifpe/asset-tracker/src/utils"
	redis_utils "github.com/gmgifpe/asset-tracker/src/utils/redis"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router    *chi.Mux
	Handler   handlers.Handler
	TokenAuth *jwtauth.JWTAuth
}

func NewServer(cfg *config.Config) (*Server, error) {
	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}
	gormDB, err := database.SetupGormDB(cfg)
	if err != nil {
		return nil, err
	}

	var cache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Enabled {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			// The API works without a cache, quote lookups just hit
			// the provider every time.
			utils.NewLogger(logrus.WarnLevel, false, "").Warnf("redis unavailable: %v", err)
			cache = nil
		}
	}

	controller := controllers.NewController(cfg, pool, gormDB, cache)
	server := &Server{
		Router:    chi.NewRouter(),
		Handler:   *handlers.NewHandler(controller),
		TokenAuth: controller.TokenAuth,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Post("/api/users", s.Handler.RegisterUser)
	s.Router.Post("/api/login", s.Handler.Login)
	s.Router.Get("/api/users", s.Handler.GetUsers)
	s.Router.Get("/api/tax-presets", s.Handler.GetTaxPresets)

	s.Router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.TokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/api/me", s.Handler.GetCurrentUser)

		r.Route("/api/accounts", func(r chi.Router) {
			r.Get("/", s.Handler.GetAccounts)
			r.Post("/", s.Handler.CreateAccount)
			r.Delete("/{id}", s.Handler.DeleteAccount)
		})

		r.Route("/api/assets", func(r chi.Router) {
			r.Get("/", s.Handler.GetAssets)
			r.Post("/", s.Handler.CreateAsset)
			r.Get("/{id}", s.Handler.GetAsset)
			r.Put("/{id}", s.Handler.UpdateAsset)
			r.Delete("/{id}", s.Handler.DeleteAsset)
		})

		r.Route("/api/transactions", func(r chi.Router) {
			r.Get("/", s.Handler.GetTransactions)
			r.Post("/", s.Handler.CreateTransaction)
		})
		r.Get("/api/transaction-summary", s.Handler.GetTransactionSummary)
		r.Get("/api/transaction-summary/{symbol}", s.Handler.GetTransactionSummary)

		r.Get("/api/holdings", s.Handler.GetHoldings)
		r.Get("/api/realized-gains", s.Handler.GetRealizedGains)
		r.Get("/api/portfolio-summary", s.Handler.GetPortfolioSummary)
		r.Get("/api/asset-performance", s.Handler.GetAssetPerformance)
		r.Get("/api/portfolio-metrics", s.Handler.GetPortfolioMetrics)

		r.Post("/api/update-prices", s.Handler.UpdatePrices)
		r.Get("/api/currency-conversion/{from}/{to}/{amount}", s.Handler.ConvertCurrency)
		r.Get("/api/backup-data", s.Handler.GetBackup)
		r.Get("/api/export-xlsx", s.Handler.ExportXLSX)

		r.Post("/api/preview-csv", s.Handler.PreviewCSV)
		r.Post("/api/import-csv", s.Handler.ImportCSV)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      server,
	}
	return httpServer
}
