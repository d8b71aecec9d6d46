package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopfloor/toolcrib/internal/bot"
	discordadapter "github.com/shopfloor/toolcrib/internal/bot/discord"
	slackadapter "github.com/shopfloor/toolcrib/internal/bot/slack"
	"github.com/shopfloor/toolcrib/internal/config"
	"github.com/shopfloor/toolcrib/internal/db"
)

// Chat tokens come from the environment, never the config file.
const (
	envDiscordToken  = "TOOLCRIB_DISCORD_TOKEN"
	envSlackAppToken = "TOOLCRIB_SLACK_APP_TOKEN"
	envSlackBotToken = "TOOLCRIB_SLACK_BOT_TOKEN"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inventory bot",
		Long: `Connects to the configured chat platform and serves the inventory
dialogue: balance reports, stock changes, new items, edits, compatibility
links, drawings, and the scheduled low-stock digest.

The chat token is read from the environment:
  discord: TOOLCRIB_DISCORD_TOKEN
  slack:   TOOLCRIB_SLACK_APP_TOKEN and TOOLCRIB_SLACK_BOT_TOKEN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "toolcrib.yaml", "path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedStamps(gormDB, cfg.Stamps); err != nil {
		return err
	}

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	daemon, err := bot.NewDaemon(bot.DaemonOpts{
		DB:      gormDB,
		Config:  cfg,
		Adapter: adapter,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config and environment.
func createAdapter(cfg *config.Config) (bot.Adapter, error) {
	switch cfg.Platform {
	case "discord":
		token := os.Getenv(envDiscordToken)
		if token == "" {
			return nil, fmt.Errorf("serve: %s is not set", envDiscordToken)
		}
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  token,
			ChannelID: cfg.ChannelID,
		})
	case "slack":
		appToken := os.Getenv(envSlackAppToken)
		botToken := os.Getenv(envSlackBotToken)
		if appToken == "" || botToken == "" {
			return nil, fmt.Errorf("serve: %s and %s must both be set", envSlackAppToken, envSlackBotToken)
		}
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  appToken,
			BotToken:  botToken,
			ChannelID: cfg.ChannelID,
		})
	default:
		return nil, fmt.Errorf("serve: unsupported platform %q", cfg.Platform)
	}
}
