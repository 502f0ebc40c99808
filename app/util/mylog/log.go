package mylog

import (
	"context"
	"log/slog"
	"os"

	"taskchat/app/config"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"
)

// Preinit installs a console handler before the config is loaded, so
// config errors are already readable.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))
}

// Init routes log records to the console and, when configured, errors to
// telegram. Records tagged with a "telegram" attr are forwarded too.
func Init(cfg *config.Config) error {
	router := slogmulti.Router()

	router = router.Add(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))

	if cfg.Log.Telegram.Token != "" {
		router = router.Add(
			slogtelegram.Option{
				Level:     slog.LevelWarn,
				Token:     cfg.Log.Telegram.Token,
				Username:  cfg.Log.Telegram.ChatID,
				AddSource: true,
			}.NewTelegramHandler(),

			func(_ context.Context, r slog.Record) bool {
				if r.Level >= slog.LevelError {
					return true
				}

				tagged := false

				r.Attrs(func(attr slog.Attr) bool {
					if attr.Key == "telegram" {
						tagged = true
						return false
					}

					return true
				})

				return tagged
			},
		)
	}

	slog.SetDefault(slog.New(router.Handler()))

	return nil
}
