package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/search"
	"github.com/listenupapp/storybook/internal/service"
	"github.com/listenupapp/storybook/internal/store"
	"github.com/listenupapp/storybook/internal/validation"
)

type globalFlags struct {
	dataPath string
	logLevel string
	envFile  string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the shared server configuration once. Global flags map onto
// the server's flags, so env vars and the .env file apply the same way.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		fs := flag.NewFlagSet("storybook", flag.ContinueOnError)
		fs.SetOutput(io.Discard)

		args := []string{"-env-file", c.flags.envFile, "-log-level", c.flags.logLevel}
		if c.flags.dataPath != "" {
			args = append(args, "-data-path", c.flags.dataPath)
		}

		c.config, c.configErr = config.LoadFrom(fs, args)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logger.Discard()
	}
	return logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}).Logger
}

// library is an opened book store with its search index and services.
type library struct {
	store  *store.Store
	index  *search.Index
	books  *service.BookService
	search *service.SearchService
	logger *slog.Logger
}

func (c *commandContext) withLibrary(cmd *cobra.Command, fn func(*library) error) error {
	lib, err := c.openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()
	return fn(lib)
}

func (c *commandContext) openLibrary(cmd *cobra.Command) (*library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log := c.logger(cmd)

	st, err := store.New(cfg.Data.DatabasePath(), log)
	if err != nil {
		return nil, fmt.Errorf("open library at %s (is the server running?): %w", cfg.Data.Path, err)
	}

	index, err := search.Open(search.Options{Path: cfg.Data.SearchPath(), Logger: log})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open search index: %w", err)
	}
	st.SetSearchIndexer(index)

	searchService := service.NewSearchService(index, st, log)
	if _, err := searchService.Sync(cmd.Context()); err != nil {
		log.Warn("search index sync failed", "error", err)
	}

	return &library{
		store:  st,
		index:  index,
		books:  service.NewBookService(st, searchService, validation.New(), log),
		search: searchService,
		logger: log,
	}, nil
}

func (l *library) Close() error {
	return errors.Join(l.index.Close(), l.store.Close())
}
