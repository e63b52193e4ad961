package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBPath      string `env:"DB_PATH,default=modstore.db"`
	DotPath     string `env:"DOT_PATH,default=~/.modstore"`
	LogLevel    int    `env:"LOG_LEVEL,default=4"`
	PolicyPath  string `env:"POLICY_PATH"`
	MetricsAddr string `env:"METRICS_ADDR,default=:2112"`
}

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("MODSTORE_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		if strings.HasPrefix(cfg.DotPath, "~") {
			expanded, err := homedir.Expand(cfg.DotPath)
			if err != nil {
				globalErr = fmt.Errorf("expand dot path: %w", err)
				return
			}
			cfg.DotPath = expanded
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
