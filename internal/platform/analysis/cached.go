package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/intake/internal/platform/cache"
	"github.com/carepoint/intake/internal/platform/telemetry"
)

// CachedAnalyzer memoises another Analyzer. Identical inputs reuse the
// stored result until ttl expires. Cache failures are logged and the
// wrapped analyzer is called as if the cache were absent.
type CachedAnalyzer struct {
	next      Analyzer
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	metrics   *telemetry.Metrics
	logger    zerolog.Logger
}

// NewCachedAnalyzer wraps next. namespace separates results of different
// analyzers sharing one cache; metrics may be nil.
func NewCachedAnalyzer(next Analyzer, c cache.Cache, namespace string, ttl time.Duration, metrics *telemetry.Metrics, logger zerolog.Logger) *CachedAnalyzer {
	return &CachedAnalyzer{
		next:      next,
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger.With().Str("component", "analysis_cache").Logger(),
	}
}

func (a *CachedAnalyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	key, err := a.Key(in)
	if err != nil {
		return nil, err
	}

	if b, err := a.cache.Get(ctx, key); err == nil {
		var res Result
		if err := json.Unmarshal(b, &res); err == nil {
			a.metrics.CacheHit(ctx)
			return &res, nil
		}
		a.logger.Warn().Str("key", key).Msg("discarding undecodable cached result")
		if err := a.cache.Delete(ctx, key); err != nil {
			a.logger.Warn().Err(err).Msg("cache delete failed")
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		a.logger.Warn().Err(err).Msg("cache read failed")
	}
	a.metrics.CacheMiss(ctx)

	res, err := a.next.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(res); err == nil {
		if err := a.cache.Set(ctx, key, b, a.ttl); err != nil {
			a.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return res, nil
}

// Key is "analysis:<namespace>:<sha256 of the JSON-encoded input>".
func (a *CachedAnalyzer) Key(in Input) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "analysis:" + a.namespace + ":" + hex.EncodeToString(sum[:]), nil
}
