package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"runout/internal/catalog/discogs"
	"runout/internal/config"
	"runout/internal/logging"
	"runout/internal/scan"
	"runout/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withScanner assembles the store, catalog client, and scanner for one
// command invocation and tears the store down afterwards.
func (c *commandContext) withScanner(cmd *cobra.Command, fn func(context.Context, *scan.Scanner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	catalog, err := discogs.New(cfg.Discogs.Token, cfg.Discogs.BaseURL,
		discogs.WithCurrency(cfg.Discogs.Currency),
		discogs.WithUserAgent(cfg.Discogs.UserAgent))
	if err != nil {
		return err
	}

	return fn(cmd.Context(), scan.New(st, catalog, logger, cfg))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
