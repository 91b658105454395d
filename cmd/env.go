package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/config"
	"github.com/abhisek/ieltsprep/internal/content"
	"github.com/abhisek/ieltsprep/internal/logging"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/screen"
)

// environment is everything a command needs: settings, logger, progress
// store and content catalog.
type environment struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *progress.KVStore
	catalog *content.Catalog
	closers []io.Closer
}

// openEnv resolves config, then opens logging, the progress backend and
// the content catalog in that order.
func openEnv(cmd *cobra.Command) (*environment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	env := &environment{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	kv, err := openKV(cmd.Context(), cfg)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	env.store = progress.NewKVStore(kv, logger)
	env.closers = append([]io.Closer{env.store}, env.closers...)

	if cfg.ContentDir != "" {
		env.catalog, err = content.Load(os.DirFS(cfg.ContentDir))
	} else {
		env.catalog, err = content.Default()
	}
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}

	logger.Debug().Str("store", cfg.Store).Str("data_dir", cfg.DataDir).Msg("environment ready")
	return env, nil
}

func openKV(ctx context.Context, cfg *config.Config) (progress.KV, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		return progress.OpenSQLite(cfg.DBPath)
	case config.StoreFile:
		return progress.NewFileKV(cfg.ProgressDir())
	case config.StoreRedis:
		return progress.NewRedisKV(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case config.StoreMemory:
		return progress.NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// Close releases the store and the log file.
func (e *environment) Close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.logger.Warn().Err(err).Msg("close")
		}
	}
}

// deps builds the services shared by the TUI screens.
func (e *environment) deps() screen.Deps {
	return screen.Deps{
		Catalog:  e.catalog,
		Store:    e.store,
		Clock:    clock.Real{},
		Logger:   e.logger,
		Autosave: autosave.Config{Interval: e.cfg.AutosaveInterval},
		Policy:   results.DefaultPolicy(),
	}
}

// overview reads the progress of every section of one test.
func (e *environment) overview(ctx context.Context, kind question.Kind, testID string) (results.TestOverview, error) {
	sections, err := e.catalog.Sections(kind, testID)
	if err != nil {
		return results.TestOverview{}, err
	}
	records, err := e.store.LoadTest(ctx, kind, testID)
	if err != nil {
		return results.TestOverview{}, err
	}
	return results.Overview(kind, testID, sections, records, results.DefaultPolicy()), nil
}

// parseSection accepts "2" or "section-2".
func parseSection(arg string) (string, error) {
	if !strings.HasPrefix(arg, "section-") {
		arg = "section-" + arg
	}
	n, err := question.SectionNumber(arg)
	if err != nil {
		return "", err
	}
	return question.SectionID(n), nil
}

// parseTarget reads "<kind> <test> [section]" arguments.
func parseTarget(args []string) (question.Kind, string, string, error) {
	kind, err := question.ParseKind(args[0])
	if err != nil {
		return "", "", "", err
	}
	testID := args[1]
	if !strings.HasPrefix(testID, "test-") {
		testID = "test-" + testID
	}
	if len(args) < 3 {
		return kind, testID, "", nil
	}
	sectionID, err := parseSection(args[2])
	if err != nil {
		return "", "", "", err
	}
	return kind, testID, sectionID, nil
}

// errNoResults is returned when a section has no completed attempt.
var errNoResults = errors.New("no completed attempt")
