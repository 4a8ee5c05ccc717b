package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/icinga/icinga-tagfilter/internal"
	"github.com/icinga/icinga-tagfilter/internal/daemon"
	"github.com/icinga/icinga-tagfilter/internal/definition"
	"github.com/icinga/icinga-tagfilter/internal/tags"
	"github.com/icinga/icingadb/pkg/icingadb"
	"github.com/icinga/icingadb/pkg/logging"
	"github.com/icinga/icingadb/pkg/utils"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

func main() {
	f, err := daemon.ParseFlags(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(daemon.ExitSuccess)
		}

		// The flags parser already printed the error.
		os.Exit(daemon.ExitFailure)
	}

	if f.Version {
		internal.PrintVersion("Icinga Tagfilter")
		os.Exit(daemon.ExitSuccess)
	}

	conf, err := daemon.LoadConfig(f.Config, os.Environ())
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(daemon.ExitFailure)
	}

	logs, err := logging.NewLogging(
		"icinga-tagfilter",
		conf.Logging.Level,
		conf.Logging.Output,
		conf.Logging.Options,
		conf.Logging.Interval,
	)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "cannot initialize logging:", err)
		os.Exit(daemon.ExitFailure)
	}

	logger := logs.GetLogger()
	defer func() { _ = logger.Sync() }()

	logger.Debugf("Starting Icinga Tagfilter (%s)", internal.Version.Version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var db *icingadb.DB
	if conf.DatabaseEnabled() {
		db, err = conf.Database.Open(logs.GetChildLogger("database"))
		if err != nil {
			logger.Fatalw("Cannot create database connection from config", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		logger.Infof("Connecting to database at '%s'", utils.JoinHostPort(conf.Database.Host, conf.Database.Port))
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalw("Cannot connect to database", zap.Error(err))
		}
	}

	fetch := func(ctx context.Context) ([]*definition.Definition, error) {
		var all []*definition.Definition
		if conf.Definitions != "" {
			fromFile, err := definition.LoadFile(conf.Definitions)
			// The default definitions file is optional as long as there is a database.
			if err != nil && !(errors.Is(err, os.ErrNotExist) && db != nil) {
				return nil, err
			}
			all = append(all, fromFile...)
		}

		if db != nil {
			fromDB, err := definition.FetchFromDatabase(ctx, db.DB)
			if err != nil {
				return nil, fmt.Errorf("cannot fetch definitions from database: %w", err)
			}
			all = append(all, fromDB...)
		}

		return all, nil
	}

	registry := definition.NewRegistry(logs.GetChildLogger("definitions"))
	if err := registry.Update(ctx, fetch); err != nil {
		logger.Fatalw("Cannot load definitions", zap.Error(err))
	}

	elements, err := loadElements(f.Args.Elements)
	if err != nil {
		logger.Fatalw("Cannot load elements", zap.Error(err))
	}

	if err := printMatches(ctx, registry, elements, conf.Workers); err != nil {
		logger.Fatalw("Cannot match elements", zap.Error(err))
	}

	if !f.Follow {
		return
	}

	go registry.PeriodicUpdates(ctx, conf.RefreshInterval, fetch)

	ticker := time.NewTicker(conf.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := printMatches(ctx, registry, elements, conf.Workers); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorw("Cannot match elements", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Stopped following")
			return
		}
	}
}

// loadElements reads the elements of all given files or from stdin if there are none.
func loadElements(paths []string) ([]*tags.Element, error) {
	if len(paths) == 0 {
		return tags.LoadElements(os.Stdin)
	}

	var elements []*tags.Element
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		loaded, err := tags.LoadElements(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		elements = append(elements, loaded...)
	}

	return elements, nil
}

func printMatches(ctx context.Context, registry *definition.Registry, elements []*tags.Element, workers int) error {
	results, err := registry.MatchAll(ctx, elements, workers)
	if err != nil {
		return err
	}

	for _, result := range results {
		matches := color.New(color.Faint).Sprint("-")
		if len(result.Definitions) > 0 {
			matches = color.GreenString(strings.Join(result.Definitions, ", "))
		}

		fmt.Printf("%s: %s\n", color.CyanString(result.Element.String()), matches)
	}

	return nil
}
