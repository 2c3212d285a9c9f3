package generation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/cache"
)

// Generator matches the planner's generator contract.
type Generator interface {
	Generate(ctx context.Context, req models.TripRequest, feedback string) (*models.ItineraryResponse, error)
}

// CachingGenerator serves repeated identical requests from a response cache.
// Only successful responses are cached.
type CachingGenerator struct {
	next   Generator
	cache  *cache.TypedCache[models.ItineraryResponse]
	logger *zap.Logger
}

func NewCachingGenerator(next Generator, c *cache.TypedCache[models.ItineraryResponse], logger *zap.Logger) *CachingGenerator {
	return &CachingGenerator{next: next, cache: c, logger: logger}
}

// CacheKey identifies a generation by every prompt input.
func CacheKey(req models.TripRequest, feedback string) (string, error) {
	return cache.NewKeyBuilder().
		Add("destination", strings.TrimSpace(req.Destination)).
		Add("startDate", req.StartDate).
		Add("endDate", req.EndDate).
		Add("members", strings.TrimSpace(req.Members)).
		Add("mustVisit", strings.TrimSpace(req.MustVisit)).
		Add("accommodation", strings.TrimSpace(req.Accommodation)).
		Add("preferences", strings.TrimSpace(req.Preferences)).
		Add("feedback", strings.TrimSpace(feedback)).
		Build()
}

func (g *CachingGenerator) Generate(ctx context.Context, req models.TripRequest, feedback string) (*models.ItineraryResponse, error) {
	key, err := CacheKey(req, feedback)
	if err != nil {
		g.logger.Warn("Skipping generation cache", zap.Error(err))
		return g.next.Generate(ctx, req, feedback)
	}
	if cached, ok := g.cache.Get(key); ok {
		g.logger.Info("Serving itinerary from cache", zap.String("destination", req.Destination))
		resp := cached
		return &resp, nil
	}

	resp, err := g.next.Generate(ctx, req, feedback)
	if err != nil {
		return nil, err
	}
	g.cache.Set(key, *resp)
	return resp, nil
}
