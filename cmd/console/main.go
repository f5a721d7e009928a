// Command console is the operator CLI for the storesight console API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/client/config"
	"github.com/storesight/console/internal/client/fetch"
	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/client/session"
	"github.com/storesight/console/internal/client/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: console [-config file] [-v] <command> [args]

commands:
  login --email you@example.com [--password ...]
  logout
  me
  stores
  cameras <store-id>
  alerts [--store id] [--status open] [--severity critical] [--watch]
  employees import <store-id> <roster.csv>
  roi show <camera-id>
  roi draw <camera-id> --name NAME (--rect x1,y1,x2,y2 | --poly x,y;x,y;x,y) [--publish]
  roi publish <camera-id>
  roi render <camera-id> <out.png>
`

// app bundles the wired client for command handlers.
type app struct {
	cfg     *config.Config
	api     *apiclient.Client
	svc     *services.Services
	session *session.Session
	cache   *fetch.Cache
	logger  *zap.Logger
	out     io.Writer
}

func newLogger(verbose bool, format string) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newApp(cfg *config.Config, logger *zap.Logger, out io.Writer) (*app, error) {
	store, err := storage.Open(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	opts := []apiclient.Option{apiclient.WithTimeout(cfg.Timeout), apiclient.WithLogger(logger)}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, apiclient.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	api := apiclient.New(cfg.APIBaseURL, store, opts...)
	svc := services.New(api)
	sess := session.New(svc.Auth, store, logger)
	sess.Rehydrate()
	return &app{
		cfg:     cfg,
		api:     api,
		svc:     svc,
		session: sess,
		cache: fetch.New(
			fetch.WithStaleTime(cfg.Fetch.StaleTime),
			fetch.WithRetries(cfg.Fetch.Retries),
			fetch.WithRetryDelay(cfg.Fetch.RetryDelay),
			fetch.WithLoadTimeout(time.Duration(cfg.Fetch.Retries+1)*(cfg.Timeout+cfg.Fetch.RetryDelay)),
			fetch.WithLogger(logger),
		),
		logger: logger,
		out:    out,
	}, nil
}

func main() {
	_ = godotenv.Load(".env.local")

	fs := flag.NewFlagSet("console", flag.ExitOnError)
	cfgPath := fs.String("config", "console.yaml", "Client config file")
	verbose := fs.Bool("v", false, "Verbose request logging on stderr")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	logger := newLogger(*verbose, cfg.LogFormat)
	defer logger.Sync()

	a, err := newApp(cfg, logger, os.Stdout)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fatalf("%s", describe(err))
	}
}

// describe prefixes API failures with their display category.
func describe(err error) string {
	switch apiclient.KindOf(err) {
	case apiclient.KindPermission:
		return "permission denied: " + err.Error()
	case apiclient.KindPlanLimit:
		return "plan limit reached: " + err.Error()
	case apiclient.KindNetwork:
		return "network error: " + err.Error()
	case apiclient.KindValidation:
		return "invalid request: " + err.Error()
	default:
		return err.Error()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "console: "+format+"\n", args...)
	os.Exit(1)
}
