// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

const envPrefix = "RESEARCH_SUPERVISOR"

// bindEnv maps RESEARCH_SUPERVISOR_<SECTION>_<KEY> onto every config key and
// accepts the conventional credential variables as well.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "HF_TOKEN")
	_ = v.BindEnv("search.api_key", envPrefix+"_SEARCH_API_KEY", "SERPAPI_KEY")
}

// setDefaults registers every key so that Unmarshal sees environment
// overrides for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)

	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.user_agent", d.LLM.UserAgent)

	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.engine", d.Search.Engine)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.user_agent", d.Search.UserAgent)

	v.SetDefault("cache.data_dir", d.Cache.DataDir)
	v.SetDefault("cache.db_file", d.Cache.DBFile)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// loadConfig resolves the configuration from v: environment over config
// file over defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v)

	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Cache.DataDir == "" {
		c.Cache.DataDir = types.DefaultConfig().Cache.DataDir
	}
	return c, nil
}

// newLogger builds a zap logger writing to stderr.
func newLogger(lc types.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}
