package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitplan/internal"
	"github.com/2beens/fitplan/internal/config"
	"github.com/2beens/fitplan/internal/logging"
)

// secrets are never kept in the TOML config.
type secrets struct {
	jwtSecret        string
	redisPassword    string
	sentryDSN        string
	honeycombEnabled bool
}

func secretsFromEnv() (secrets, error) {
	s := secrets{
		jwtSecret:        os.Getenv("FITPLAN_JWT_SECRET"),
		redisPassword:    os.Getenv("FITPLAN_REDIS_PASS"),
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}
	if s.jwtSecret == "" {
		return s, errors.New("FITPLAN_JWT_SECRET not set")
	}
	return s, nil
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	if err := run(*env, *configPath); err != nil {
		log.Fatalf("fitplan service: %s", err)
	}
}

func run(env, configPath string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	envSecrets, err := secretsFromEnv()
	if err != nil {
		return err
	}

	logging.Setup(logging.LoggerSetupParams{
		ServiceName:      "fitplan",
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        envSecrets.sentryDSN,
		SentryServerName: "fitplan-service",
	})
	log.Warnf("running in [%s] environment, port %d", env, cfg.Port)

	if envSecrets.redisPassword == "" {
		log.Errorln("redis password not set, use FITPLAN_REDIS_PASS")
	}
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
	if envSecrets.honeycombEnabled && os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("honeycomb enabled but HONEYCOMB_API_KEY env var not set")
	}

	versionInfo, err := lastCommitHash()
	if err != nil {
		log.Tracef("no version info from git: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		VersionInfo:             versionInfo,
		RedisPassword:           envSecrets.redisPassword,
		SessionSigningKey:       []byte(envSecrets.jwtSecret),
		HoneycombTracingEnabled: envSecrets.honeycombEnabled,
	})
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received, stopping ...")
	server.GracefulShutdown()

	return nil
}

// lastCommitHash expects the binary to be started from the repository root.
func lastCommitHash() (string, error) {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
