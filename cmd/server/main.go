// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codr1/Courtside/internal/api/auth"
	"github.com/codr1/Courtside/internal/cognito"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/email"
	"github.com/codr1/Courtside/internal/ratelimit"
	"github.com/codr1/Courtside/internal/scheduler"
)

func setupLogger(cfg config.LoggingConfig, development bool) io.Closer {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stderr
	if development {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if cfg.File == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nil
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rotated)).With().Timestamp().Logger()
	return rotated
}

// newEmailClient returns nil when email is disabled so handlers can test the
// interface against nil.
func newEmailClient(cfg *config.Config) (email.EmailSender, error) {
	if !cfg.Email.Enabled {
		log.Info().Msg("Email disabled")
		return nil, nil
	}
	client, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.FromAddress)
	if err != nil {
		return nil, err
	}
	log.Info().Str("region", cfg.Email.Region).Msg("SES email client initialized")
	return client, nil
}

func newOTPProvider(cfg *config.Config) (auth.OTPProvider, error) {
	if !cfg.Auth.Cognito.Enabled {
		return nil, nil
	}
	client, err := cognito.NewClient(cfg.Auth.Cognito.UserPoolID, cfg.Auth.Cognito.ClientID)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Cognito OTP provider initialized")
	return client, nil
}

func newRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	rlCfg := ratelimit.DefaultConfig()
	rlCfg.LoginMaxAttempts = cfg.Auth.RateLimit.MaxLoginAttempts
	rlCfg.LoginLockout = cfg.Auth.RateLimit.LockoutDuration
	rlCfg.SendCooldown = cfg.Auth.RateLimit.OTPSendCooldown
	rlCfg.SendMaxPerHour = cfg.Auth.RateLimit.MaxOTPSendsPerHour
	return ratelimit.New(rlCfg)
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	if closer := setupLogger(cfg.Logging, cfg.IsDevelopment()); closer != nil {
		defer closer.Close()
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	emailClient, err := newEmailClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize email client")
	}
	otp, err := newOTPProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Cognito client")
	}
	limiter := newRateLimiter(cfg)
	defer limiter.Close()

	if cfg.Auth.Clerk.Enabled {
		auth.InitClerk(cfg.Auth.Clerk.SecretKey)
	}

	initHandlers(cfg, database, emailClient, limiter, otp)

	if cfg.Scheduler.Enabled {
		if err := scheduler.Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize scheduler")
		}
		if err := scheduler.RegisterReminderJobs(database, emailClient, cfg.Scheduler.ReminderCron); err != nil {
			log.Fatal().Err(err).Msg("Failed to register reminder jobs")
		}
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	server := newServer(cfg, database)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if cfg.Scheduler.Enabled {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
