package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/database"
	"github.com/gmgifpe/asset-tracker/src/utils"
	redis_utils "github.com/gmgifpe/asset-tracker/src/utils/redis"
	"github.com/gmgifpe/asset-tracker/src/worker/controllers"
	handlers "github.com/gmgifpe/asset-tracker/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
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

	logger := utils.NewLogger(logrus.InfoLevel, false, "")
	var cache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Enabled {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			logger.Warnf("redis unavailable: %v", err)
			cache = nil
		}
	}

	controller := controllers.NewController(cfg, pool, gormDB, cache)
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handlers.NewHandler(controller),
	}
	server.InitRoutes()

	if cfg.Worker.PriceRefreshCron != "" {
		err := controller.StartRefreshSchedule(cfg.Worker.PriceRefreshCron, func() {
			ctx, cancel := context.WithTimeout(utils.WithLogger(context.Background(), logger), 10*time.Minute)
			defer cancel()
			if _, err := controller.RefreshAllPrices(ctx); err != nil {
				logger.Errorf("scheduled price refresh failed: %v", err)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/prices", func(r chi.Router) {
		r.Post("/refresh-all", s.Handler.RefreshAllPrices)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
