package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// CachedRegistry fronts an opportunity.Registry with a read-through
// cache. Listings change rarely relative to how often applications
// resolve them, so a short TTL takes most of the read load off the
// listing tables. Writes pass straight through.
type CachedRegistry struct {
	inner  opportunity.Registry
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedRegistry wraps a registry with caching. A zero TTL disables
// the cache entirely and returns the inner registry behavior.
func NewCachedRegistry(inner opportunity.Registry, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedRegistry {
	return &CachedRegistry{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

var _ opportunity.Registry = (*CachedRegistry)(nil)

// cachedResolution is the wire form of a cached lookup. Negative
// results are cached too so a flood of applies to a dead listing
// doesn't hammer the database.
type cachedResolution struct {
	Exists     bool   `json:"exists"`
	Title      string `json:"title"`
	PosterID   string `json:"poster_id"`
	PosterRole string `json:"poster_role"`
}

func resolutionKey(ref opportunity.Ref) string {
	return fmt.Sprintf("%sresolve:%s:%s", PrefixOpportunity, ref.Type, ref.ID)
}

// Resolve reads through the cache. Cache failures fall back to the
// inner registry; they are never surfaced to the caller.
func (c *CachedRegistry) Resolve(ctx context.Context, ref opportunity.Ref) (opportunity.Resolution, error) {
	if c.ttl <= 0 {
		return c.inner.Resolve(ctx, ref)
	}

	key := resolutionKey(ref)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached cachedResolution
		if err := json.Unmarshal(data, &cached); err == nil {
			return opportunity.Resolution{
				Ref:        ref,
				Exists:     cached.Exists,
				Title:      cached.Title,
				PosterID:   cached.PosterID,
				PosterRole: actor.Role(cached.PosterRole),
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("opportunity cache read failed",
			logger.OpportunityID(ref.ID),
			logger.Err(err))
	}

	res, err := c.inner.Resolve(ctx, ref)
	if err != nil {
		return res, err
	}

	data, err := json.Marshal(cachedResolution{
		Exists:     res.Exists,
		Title:      res.Title,
		PosterID:   res.PosterID,
		PosterRole: res.PosterRole.String(),
	})
	if err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("opportunity cache write failed",
				logger.OpportunityID(ref.ID),
				logger.Err(err))
		}
	}
	return res, nil
}

// AddApplicant passes through; the applicant set is not cached.
func (c *CachedRegistry) AddApplicant(ctx context.Context, ref opportunity.Ref, studentID string) error {
	return c.inner.AddApplicant(ctx, ref, studentID)
}
