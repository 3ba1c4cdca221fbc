package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/clients/accounts"
	"github.com/tashclub/teenpatti/go/internal/game/channel"
	"github.com/tashclub/teenpatti/go/internal/game/session"
	"github.com/tashclub/teenpatti/go/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := buildAccountsClient(cfg)

	balance, err := client.FetchBalance(ctx, cfg.Player.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrForceLogout) {
			log.Fatal().Msg("account service rejected the session, please log in again")
		}
		log.Fatal().Err(err).Msg("failed to fetch balance")
	}
	log.Info().Int64("balance", balance).Str("user_id", cfg.Player.UserID).Msg("balance synchronized")

	ch, err := dialChannel(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reach the table server")
	}
	defer ch.Close()

	// Joining through an invite consumes it; failure here only leaves a stale
	// entry in the invite list.
	if cfg.Room.RoomID != "" {
		if err := client.DeleteInvite(ctx, cfg.Player.UserID, cfg.Room.RoomID); err != nil {
			log.Debug().Err(err).Str("room_id", cfg.Room.RoomID).Msg("could not clear invite")
		}
	}

	area, err := pterm.DefaultArea.WithFullscreen().Start()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start terminal area")
	}
	defer area.Stop()

	view := tui.View{SelfID: cfg.Player.UserID}
	var sess *session.Session
	sess = session.New(
		session.Config{
			UserID:          cfg.Player.UserID,
			Username:        cfg.Player.Username,
			ProfileImageURL: cfg.Player.ProfileImageURL,
			RoomID:          cfg.Room.RoomID,
			PrivateRoom:     cfg.Room.Private,
			Balance:         balance,
		},
		ch,
		client,
		session.WithUpdateFunc(func(snap session.Snapshot) {
			area.Update(view.Render(snap, sess.TurnTimeLeft()))
		}),
		session.WithForcedLogoutFunc(func() {
			pterm.Error.Println("Logged out by the account service")
			stop()
		}),
	)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	if err := runCommandLoop(ctx, sess, client, cfg); err != nil {
		log.Error().Err(err).Msg("command loop failed")
	}
	stop()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("session ended with error")
	}
	pterm.Println("Thanks for playing!")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func buildAccountsClient(cfg *Config) *accounts.Client {
	var opts []accounts.Option
	if cfg.Accounts.AuthToken != "" {
		opts = append(opts, accounts.WithHeader("Authorization", "Bearer "+cfg.Accounts.AuthToken))
	}
	return accounts.New(cfg.Accounts.BaseURL, opts...)
}

const dialAttempts = 3

// dialChannel reaches the table server with a capped backoff. The channel
// itself never retries; each attempt is a fresh connect.
func dialChannel(ctx context.Context, cfg *Config) (channel.Channel, error) {
	if cfg.Table.Transport == "nats" {
		ncfg := channel.DefaultNATSConfig()
		ncfg.URL = cfg.Table.NATSURL
		return channel.DialNATS(ncfg)
	}

	manager := channel.NewManager(channel.DefaultConfig())
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		var ws *channel.WS
		if ws, err = manager.Connect(ctx, cfg.Table.Endpoint); err == nil {
			return ws, nil
		}
		if attempt == dialAttempts || ctx.Err() != nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("connect failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, err
}
