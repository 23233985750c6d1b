package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/piwi3910/boxplanner/internal/analysis"
	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/planner"
)

// analysisOptions wires the analysis service into a planner when an API key
// is configured. The returned cleanup closes the cache connection.
func analysisOptions(cfg config.Config, log zerolog.Logger) ([]planner.Option, func()) {
	if !cfg.AnalysisEnabled() {
		log.Info().Msg("OPENAI_API_KEY not set, floor plan analysis disabled")
		return nil, func() {}
	}

	client := analysis.NewOpenAIClient(analysis.OpenAIConfig{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		AdviceModel: cfg.AdviceModel,
		Timeout:     cfg.AnalysisTimeout,
	}, log)

	var cache analysis.Cache = analysis.NoopCache{}
	cleanup := func() {}
	if cfg.RedisAddr != "" {
		rc := analysis.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, analysis results will not be cached")
			_ = rc.Close()
		} else {
			cache = rc
			cleanup = func() { _ = rc.Close() }
		}
	}

	analyzer := &analysis.CachedAnalyzer{Next: client, Cache: cache, TTL: cfg.CacheTTL, Log: log}
	return []planner.Option{planner.WithAnalyzer(analyzer), planner.WithAdvisor(client)}, cleanup
}
