package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"taskchat/app/api"
	"taskchat/app/client/llm"
	"taskchat/app/config"
	"taskchat/app/service/conversation"
	"taskchat/app/service/mcptools"
	"taskchat/app/service/orchestrator"
	"taskchat/app/service/tasks"
	"taskchat/app/storage"
	"taskchat/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, storage.New)
	do.Provide(di, conversation.NewStore)
	do.Provide(di, tasks.NewStore)
	do.Provide(di, tasks.New)
	do.Provide(di, llm.New)
	do.Provide(di, orchestrator.New)
	do.Provide(di, mcptools.New)
	do.Provide(di, api.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*api.Service](di).Run(groupCtx)
	})

	if cfg.MCP.Enabled {
		group.Go(func() error {
			return do.MustInvoke[*mcptools.Service](di).ServeStdio(groupCtx)
		})
	}

	if err = group.Wait(); err != nil {
		slog.Error("Service stopped", "error", err)
	}
}
