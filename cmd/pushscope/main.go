package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/pushscope/pkg/channel"
	"github.com/umputun/pushscope/pkg/channel/telegram"
	"github.com/umputun/pushscope/pkg/config"
	"github.com/umputun/pushscope/pkg/dispatch"
	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/render"
	"github.com/umputun/pushscope/pkg/repository"
	"github.com/umputun/pushscope/pkg/retry"
	"github.com/umputun/pushscope/pkg/scheduler"
	"github.com/umputun/pushscope/pkg/scoring"
	"github.com/umputun/pushscope/pkg/source"
	"github.com/umputun/pushscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

const fetchTimeout = 30 * time.Second

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor, os.Getenv("TELEGRAM_TOKEN"))
	lgr.Printf("[INFO] starting pushscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	lgr.Print("[INFO] shutdown complete")
}

// attemptStore joins attempt and subscription repositories for the dispatcher
type attemptStore struct {
	*repository.AttemptRepository
	*repository.SubscriptionRepository
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if cfg.Telegram.Token != "" {
		setupLog(opts.Debug, opts.NoColor, cfg.Telegram.Token)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	if err := repos.Source.SyncSources(ctx, cfg.Sources); err != nil {
		return fmt.Errorf("failed to sync sources: %w", err)
	}

	senders, err := makeSenders(cfg)
	if err != nil {
		return err
	}

	dispatcher := dispatch.New(dispatch.Config{
		Store:       attemptStore{repos.Attempt, repos.Subscription},
		Senders:     senders,
		Policy:      retry.New(cfg.Delivery.RetryBaseDelay, cfg.Delivery.MaxJitter),
		RateLimits:  cfg.RateLimits(),
		MaxWorkers:  cfg.Delivery.MaxWorkers,
		SendTimeout: cfg.Delivery.SendTimeout,
	})

	scorer := scoring.NewEngine(cfg.Scoring)
	processor := scheduler.NewProcessor(scheduler.ProcessorParams{
		ItemStore:         repos.Item,
		SubscriptionStore: repos.Subscription,
		AttemptStore:      repos.Attempt,
		Scorer:            scorer,
		Renderer:          render.New(),
		QualityGate:       cfg.Matching.QualityGate,
		MaxRetries:        cfg.Delivery.MaxRetries,
		RetryBaseDelay:    cfg.Delivery.RetryBaseDelay,
		MaxWorkers:        cfg.Schedule.MaxWorkers,
	})

	sched := scheduler.NewScheduler(scheduler.Params{
		ItemStore:         repos.Item,
		SubscriptionStore: repos.Subscription,
		AttemptStore:      repos.Attempt,
		SourceStore:       repos.Source,
		SettingStore:      repos.Setting,
		Fetcher:           source.NewFeedSource(fetchTimeout, "pushscope/"+revision),
		Dispatcher:        dispatcher,
		Processor:         processor,
		Scorer:            scorer,
		IngestInterval:    cfg.Schedule.IngestInterval,
		DispatchInterval:  cfg.Schedule.DispatchInterval,
		RescoreInterval:   cfg.Schedule.RescoreInterval,
		RescoreWindow:     cfg.Schedule.RescoreWindow,
		StaleAfter:        cfg.Schedule.StaleAfter,
		BatchSize:         cfg.Schedule.BatchSize,
		MaxWorkers:        cfg.Schedule.MaxWorkers,
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, server.NewRepositoryAdapter(repos), sched, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeSenders registers channel adapters enabled in config
func makeSenders(cfg *config.Config) (*channel.Registry, error) {
	senders := channel.NewRegistry()
	if cfg.Telegram.Token == "" {
		lgr.Printf("[WARN] telegram token not set, telegram deliveries will fail with no_adapter")
		return senders, nil
	}
	tg, err := telegram.NewWithToken(cfg.Telegram.Token, cfg.Telegram.Timeout, telegram.StaticRecipients(cfg.Telegram.Recipients))
	if err != nil {
		return nil, fmt.Errorf("failed to make telegram sender: %w", err)
	}
	senders.Register(domain.ChannelTelegram, tg)
	lgr.Printf("[INFO] telegram sender registered for %d recipients", len(cfg.Telegram.Recipients))
	return senders, nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	var nonEmpty []string
	for _, s := range secs {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, lgr.Secret(nonEmpty...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
