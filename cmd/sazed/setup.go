package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/providers/gateway"
	"github.com/sandevgo/sazed/internal/providers/llm"
	"github.com/sandevgo/sazed/internal/providers/tools"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/internal/service/archive"
	"github.com/sandevgo/sazed/internal/service/command"
	"github.com/sandevgo/sazed/internal/service/memory"
	"github.com/sandevgo/sazed/internal/storage/postgres"
	"github.com/sandevgo/sazed/internal/storage/sqlite"
	"github.com/sandevgo/sazed/internal/transport/httpapi"
	"github.com/sandevgo/sazed/internal/transport/telegram"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/sandevgo/sazed/pkg/srv"
)

const (
	kbTimeout        = 60 * time.Second
	postgresMaxConns = 10
)

// App is the composition root shared by the subcommands.
type App struct {
	Config    *config.AppConfig
	Distill   *config.DistillConfig
	Store     core.Store
	Tools     *tools.Registry
	Agent     *agent.Agent
	Distiller *memory.Distiller
	Archiver  *archive.Service
	Chats     *telegram.ChatSessions
	Router    *command.Router
	KB        *gateway.Client
	Gateway   *gateway.Client
	Prompt     *memory.SysPrompt
}

// NewApp opens storage and builds the services. withModel is false for
// commands that never call the model, so they work without an API key.
func NewApp(ctx context.Context, withModel bool) (*App, error) {
	appCfg := config.NewAppConfig(ctx)
	distillCfg := config.NewDistillConfig(ctx)
	gwCfg := config.NewGatewayConfig(ctx)

	store, err := openStore(ctx, appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	gw := gateway.NewClient(gwCfg.URL, gwCfg.APIKey, gwCfg.ToolTimeout)
	kb := gateway.NewClient(gwCfg.URL, gwCfg.APIKey, kbTimeout)

	registry, err := tools.NewRegistry(tools.DefaultCatalog(), gw, store.Memory(), gwCfg.ToolTimeout)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize tools: %w", err)
	}

	app := &App{
		Config:   appCfg,
		Distill:  distillCfg,
		Store:    store,
		Tools:    registry,
		Archiver: archive.NewService(store.Archive(), distillCfg.ArchiveMinAge),
		Chats:    telegram.NewChatSessions(),
		KB:       kb,
		Gateway:  gw,
		Prompt:   memory.NewSysPrompt(appCfg.GetSystemPath()),
	}

	if !gw.Configured() {
		log.FromCtx(ctx).Warn().Msg("GATEWAY_URL is not set, gateway tools and the knowledge base are unavailable")
	}

	if withModel {
		model, err := llm.NewProvider(ctx, config.NewAnthropicConfig(ctx))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
		}

		var docs core.DocumentStore
		if kb.Configured() {
			docs = gateway.NewDocuments(kb)
		}

		app.Agent = agent.NewAgent(appCfg, store.Sessions(), store.Memory(), model, registry, app.Prompt)
		app.Distiller = memory.NewDistiller(store.Sessions(), store.Memory(), model, docs, *distillCfg)
		app.Router = app.NewRouter(app.Chats)
	}

	return app, nil
}

// NewRouter builds the slash-command router for a transport with its own
// notion of the current session.
func (a *App) NewRouter(rotator command.SessionRotator) *command.Router {
	return command.New(command.NewCommands(rotator, a.Distiller, a.Store.Memory(), a.Tools))
}

func (a *App) Close() error {
	return a.Store.Close()
}

// Services returns the long-running services of `sazed serve`, in start order.
func (a *App) Services(ctx context.Context) ([]srv.Service, error) {
	if a.Agent == nil {
		return nil, errors.New("serve requires the model provider")
	}

	services := []srv.Service{srv.NewCleanup(a.Close)}

	var kb *gateway.Client
	if a.KB.Configured() {
		kb = a.KB
	}

	services = append(services, httpapi.New(ctx, a.Config, httpapi.Deps{
		Agent:     a.Agent,
		Sessions:  a.Store.Sessions(),
		Memory:    a.Store.Memory(),
		Distiller: a.Distiller,
		Archiver:  a.Archiver,
		Tools:     a.Tools,
		KB:        kb,
	}))

	if tgCfg := config.NewTelegramConfig(ctx); tgCfg.Enabled() {
		bot, err := telegram.NewBot(ctx, tgCfg, a.Agent, a.Router, a.Chats)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if a.Distill.AutoDistill {
		services = append(services, memory.NewWorker(a.Store.Sessions(), a.Distiller, a.Distill.Interval, a.Distill.Idle))
	}

	return services, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig) (core.Store, error) {
	if cfg.UsePostgres() {
		log.FromCtx(ctx).Info().Msg("using postgres storage")
		store, err := postgres.New(ctx, cfg.DatabaseURL, postgresMaxConns)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	log.FromCtx(ctx).Info().Str("path", cfg.DatabasePath).Msg("using sqlite storage")
	store, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
