package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinescope/internal/frontend/telegram"
	mcpserver "github.com/vadimtrunov/cinescope/internal/mcp"
	"github.com/vadimtrunov/cinescope/internal/web"
)

// newServeCmd returns the "serve" subcommand running the JSON API.
func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long:  "Serve the browse API under /api, plus /health and /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			serverCfg := a.cfg.Server
			if addr != "" {
				serverCfg.Addr = addr
			}

			ctx, cancel := signalContext()
			defer cancel()

			srv := web.NewServer(serverCfg, web.NewRouter(a.svc, a.logger), a.logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the cinescope Telegram bot for browsing via Telegram.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

// runBot initializes services and starts the Telegram bot.
func runBot() error {
	a, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or CINESCOPE_TELEGRAM_BOT_TOKEN env var",
		)
	}

	bot, err := telegram.New(a.cfg.Telegram.BotToken, a.cfg.Telegram.AllowedUserIDs, a.svc, a.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a.logger.Info("telegram bot starting",
		slog.Int("allowed_users", len(a.cfg.Telegram.AllowedUserIDs)),
	)
	return bot.Start(ctx)
}

// newMCPServeCmd returns the hidden "mcp-serve" subcommand. It serves the
// browse tools over stdin/stdout for MCP clients.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start MCP server over stdio",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx, cancel := signalContext()
			defer cancel()

			srv := mcpserver.NewServer(mcpserver.Deps{Browse: a.svc}, version, a.logger)
			return srv.ServeStdio(ctx)
		},
	}
}
