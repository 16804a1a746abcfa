package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/dgtlunion/konspekt/assets"
	"github.com/dgtlunion/konspekt/config"
	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/storage"
	"github.com/dgtlunion/konspekt/webhook"
)

// app owns the collaborators built from a configuration.
type app struct {
	cfg    *config.Config
	svc    *pipeline.Service
	store  *storage.Store
	logger *log.Logger

	closers []func() error
}

// appOpts selects which optional collaborators a command needs.
type appOpts struct {
	summarizer bool
	intake     bool // webhook transcript client, dedupe and relay
	store      bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, opts appOpts) (*app, error) {
	resolved, err := cfg.Layout.Resolve()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	deps := pipeline.Deps{
		Layout: pipeline.LayoutSettings{
			Geometry: resolved.Geometry,
			Theme:    resolved.Theme,
			BoldMode: resolved.BoldMode,
		},
		Logger:   logger,
		Location: resolved.Location,
		Assets:   newAssetStore(cfg, resolved.Geometry.Width, resolved.Geometry.Height, logger),
	}

	if opts.store {
		a.store, err = storage.New(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, err
		}
		deps.Store = a.store
	}

	if opts.summarizer {
		if cfg.LLM.APIKey == "" {
			if !opts.intake {
				return nil, errors.New("GEMINI_API_KEY is not set")
			}
			logger.Warn("GEMINI_API_KEY is not set, summary endpoints are disabled")
		} else {
			gen, err := llm.NewGeminiClient(ctx, cfg.LLM.Config, cfg.LLM.APIKey)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, gen.Close)
			loc := resolved.Location
			now := func() time.Time { return time.Now().In(loc) }
			deps.Summarizer = llm.NewSummarizer(gen, now).WithTimeout(cfg.LLM.Timeout)
		}
	}

	if opts.intake {
		deps.Relay = webhook.NewRelay(cfg.N8N.URL, cfg.N8N.Timeout)
		if !deps.Relay.Enabled() {
			logger.Warn("N8N_WEBHOOK_PROD_URL is not set, results are not relayed")
		}
		if cfg.Fireflies.APIKey != "" {
			deps.Transcripts = webhook.NewTranscriptClient(cfg.Fireflies.GraphQLURL, cfg.Fireflies.APIKey, cfg.Fireflies.Timeout)
		} else {
			logger.Warn("FIREFLIES_API_KEY is not set, meeting ids cannot be fetched")
		}
		if cfg.Fireflies.WebhookSecret == "" {
			logger.Warn("FIREFLIES_WEBHOOK_KEY is not set, webhook signatures are not checked")
		}
		deps.Deduper, err = a.newDeduper(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.svc = pipeline.New(deps)
	return a, nil
}

func newAssetStore(cfg *config.Config, width, height float64, logger *log.Logger) *assets.Store {
	opts := assets.Options{PageWidth: width, PageHeight: height, Logger: logger}
	if cfg.Assets.Dir == "" {
		return assets.NewStore(nil, opts)
	}
	return assets.NewStore(os.DirFS(cfg.Assets.Dir), opts)
}

// newDeduper prefers Redis when configured so redeliveries are recognised
// across restarts and replicas.
func (a *app) newDeduper(ctx context.Context) (webhook.Deduper, error) {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		return webhook.NewMemoryDeduper(rc.DedupeTTL), nil
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", rc.Addr, err)
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("webhook dedupe in redis", "addr", rc.Addr, "ttl", rc.DedupeTTL)
	return webhook.NewRedisDeduper(client, rc.Prefix, rc.DedupeTTL), nil
}

// Close releases clients in reverse creation order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing client", "err", err)
		}
	}
	a.closers = nil
}
