package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gmgifpe/asset-tracker/src/clients/quotes"
	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/repositories"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"
	redis_utils "github.com/gmgifpe/asset-tracker/src/utils/redis"
)

type PriceServiceI interface {
	// GetPrice resolves the current price for a symbol. The bool
	// reports whether the price is a stale fallback from history.
	GetPrice(ctx context.Context, symbol, assetType string) (*schemas.Quote, bool, error)
	RefreshUserPrices(ctx context.Context, userID uint) (*schemas.UpdatePricesResponse, error)
	RefreshAllPrices(ctx context.Context) (*schemas.UpdatePricesResponse, error)
}

type PriceService struct {
	assetsRepo  repositories.AssetRepository
	usersRepo   repositories.UserRepository
	historyRepo repositories.PriceHistoryRepository
	quoteClient quotes.QuoteClientI
	cache       *redis_utils.RedisHandler
	cacheTTL    time.Duration
}

// NewPriceService builds a price service. cache may be nil, lookups
// then always go to the quote provider.
func NewPriceService(
	assetsRepo repositories.AssetRepository,
	usersRepo repositories.UserRepository,
	historyRepo repositories.PriceHistoryRepository,
	quoteClient quotes.QuoteClientI,
	cache *redis_utils.RedisHandler,
	cacheTTL time.Duration,
) *PriceService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &PriceService{
		assetsRepo:  assetsRepo,
		usersRepo:   usersRepo,
		historyRepo: historyRepo,
		quoteClient: quoteClient,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

func (s *PriceService) GetPrice(ctx context.Context, symbol, assetType string) (*schemas.Quote, bool, error) {
	logger := utils.LoggerFromContext(ctx)

	cacheKey, keyErr := redis_utils.GenerateUUID("price", symbol, assetType)
	if s.cache != nil && keyErr == nil {
		var cached schemas.Quote
		if err := s.cache.Get(cacheKey, &cached); err == nil {
			return &cached, false, nil
		}
	}

	quote, err := s.quoteClient.GetPrice(ctx, symbol, assetType)
	if err == nil {
		if s.cache != nil && keyErr == nil {
			if cacheErr := s.cache.Set(cacheKey, quote, s.cacheTTL); cacheErr != nil {
				logger.Warnf("failed to cache price for %s: %v", symbol, cacheErr)
			}
		}
		history := &models.PriceHistory{
			Symbol:    symbol,
			AssetType: assetType,
			Price:     quote.Price,
		}
		if histErr := s.historyRepo.Create(ctx, history, nil); histErr != nil {
			logger.Warnf("failed to record price history for %s: %v", symbol, histErr)
		}
		return quote, false, nil
	}

	logger.Warnf("quote lookup failed for %s, falling back to history: %v", symbol, err)
	latest, histErr := s.historyRepo.GetLatestBySymbol(ctx, symbol)
	if histErr != nil || latest == nil {
		return nil, false, err
	}
	return &schemas.Quote{
		Symbol:   symbol,
		Price:    latest.Price,
		Currency: "USD",
	}, true, nil
}

func (s *PriceService) RefreshUserPrices(ctx context.Context, userID uint) (*schemas.UpdatePricesResponse, error) {
	assets, err := s.assetsRepo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &schemas.UpdatePricesResponse{}
	for i := range assets {
		asset := &assets[i]
		if !asset.IsQuotable() {
			continue
		}
		quote, stale, err := s.GetPrice(ctx, asset.Symbol, asset.AssetType)
		if err != nil {
			response.Warnings = append(response.Warnings,
				fmt.Sprintf("could not update price for %s: %v", asset.Symbol, err))
			continue
		}
		if stale {
			response.Warnings = append(response.Warnings,
				fmt.Sprintf("using last known price for %s", asset.Symbol))
		}
		if err := s.assetsRepo.UpdatePrice(ctx, asset.ID, quote.Price, nil); err != nil {
			response.Warnings = append(response.Warnings,
				fmt.Sprintf("could not store price for %s: %v", asset.Symbol, err))
			continue
		}
		response.UpdatedCount++
	}
	response.Message = fmt.Sprintf("updated %d prices", response.UpdatedCount)
	return response, nil
}

func (s *PriceService) RefreshAllPrices(ctx context.Context) (*schemas.UpdatePricesResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	users, err := s.usersRepo.List()
	if err != nil {
		return nil, err
	}

	response := &schemas.UpdatePricesResponse{}
	for _, user := range users {
		userResponse, err := s.RefreshUserPrices(ctx, user.ID)
		if err != nil {
			logger.Errorf("price refresh failed for user %d: %v", user.ID, err)
			response.Warnings = append(response.Warnings,
				fmt.Sprintf("refresh failed for user %d: %v", user.ID, err))
			continue
		}
		response.UpdatedCount += userResponse.UpdatedCount
		response.Warnings = append(response.Warnings, userResponse.Warnings...)
	}
	response.Message = fmt.Sprintf("updated %d prices", response.UpdatedCount)
	return response, nil
}
