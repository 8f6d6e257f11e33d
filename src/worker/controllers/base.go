package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/gmgifpe/asset-tracker/src/clients/quotes"
	"github.com/gmgifpe/asset-tracker/src/config"
	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/scheduler"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/services"
	redis_utils "github.com/gmgifpe/asset-tracker/src/utils/redis"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

type Controller struct {
	PriceService services.PriceServiceI

	schedulerMutex sync.Mutex
	refreshTask    *scheduler.ScheduledTask
}

func NewController(cfg *config.Config, pool *pgxpool.Pool, gormDB *gorm.DB, cache *redis_utils.RedisHandler) *Controller {
	assetsRepo := repositories.NewAssetRepository(pool)
	usersRepo := repositories.NewUserRepository(gormDB)
	historyRepo := repositories.NewPriceHistoryRepository(pool)
	quoteClient := quotes.NewClient(cfg)

	priceService := services.NewPriceService(
		assetsRepo, usersRepo, historyRepo, quoteClient, cache,
		time.Duration(cfg.ExternalClients.Quotes.CacheTTLMinutes)*time.Minute,
	)
	return &Controller{PriceService: priceService}
}

func (c *Controller) RefreshAllPrices(ctx context.Context) (*schemas.UpdatePricesResponse, error) {
	return c.PriceService.RefreshAllPrices(ctx)
}

// StartRefreshSchedule replaces any running price-refresh cron with one
// on the given expression.
func (c *Controller) StartRefreshSchedule(cronSpec string, task func()) error {
	c.schedulerMutex.Lock()
	defer c.schedulerMutex.Unlock()

	if c.refreshTask != nil {
		c.refreshTask.Cancel()
		c.refreshTask = nil
	}

	scheduled, err := scheduler.NewScheduledTask(cronSpec, task)
	if err != nil {
		return err
	}
	c.refreshTask = scheduled
	return nil
}

func (c *Controller) StopRefreshSchedule() {
	c.schedulerMutex.Lock()
	defer c.schedulerMutex.Unlock()

	if c.refreshTask != nil {
		c.refreshTask.Cancel()
		c.refreshTask = nil
	}
}
