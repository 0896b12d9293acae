package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/learnnova/learnnova-cli/internal/api"
	"github.com/learnnova/learnnova-cli/internal/config"
	chatsvc "github.com/learnnova/learnnova-cli/internal/service/chat"
	"github.com/learnnova/learnnova-cli/internal/store"
	"github.com/learnnova/learnnova-cli/internal/transport"
)

// runtime bundles the wired chat stack behind a single Close.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	manager *chatsvc.Manager
}

// newClientStack loads config and builds the logger and API client, the
// pieces every command needs.
func newClientStack() (*config.Config, *zap.Logger, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	client, err := api.New(api.Config{
		BaseURL:       cfg.API.BaseURL,
		SessionCookie: cfg.API.SessionCookie,
		Timeout:       cfg.API.Timeout,
	}, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, client, nil
}

// newRuntime wires the full chat stack and reconciles the local thread cache
// with the backend. The caller owns the runtime and must Close it so queued
// cloud writes drain before the process exits.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, client, err := newClientStack()
	if err != nil {
		return nil, err
	}

	fileStore := store.NewFileStore(cfg.Chat.StateFile, cfg.Chat.SaveDebounce, logger)
	chain := transport.ForMode(cfg.Chat.StreamMode, client, logger)
	logger.Debug("chat transport ready", zap.Strings("tiers", chain.Names()))

	manager := chatsvc.NewManager(client, chain, fileStore, chatsvc.NewOutbox(logger), logger)
	if err := manager.Bootstrap(ctx); err != nil {
		_ = manager.Close()
		_ = logger.Sync()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, client: client, manager: manager}, nil
}

// Close drains queued cloud writes and flushes the local thread cache.
func (rt *runtime) Close() {
	if err := rt.manager.Close(); err != nil {
		rt.logger.Warn("shutdown flush failed", zap.Error(err))
	}
	_ = rt.logger.Sync()
}
