package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Transport string

const (
	TransportStdio      Transport = "stdio"
	TransportSSE        Transport = "sse"
	TransportStreamable Transport = "streamable"
)

type Config struct {
	DatabaseDSN           string    `mapstructure:"database_dsn"`
	ConnectTimeoutSeconds int       `mapstructure:"connect_timeout_seconds"`
	StatementTimeoutMs    int       `mapstructure:"statement_timeout_ms"`
	AppName               string    `mapstructure:"app_name"`
	Transport             Transport `mapstructure:"transport"`
	HTTPAddr              string    `mapstructure:"http_addr"`
	HTTPPort              int       `mapstructure:"http_port"`
	HTTPPath              string    `mapstructure:"http_path"`
	OpenAIAPIKey          string    `mapstructure:"openai_api_key"`
	OpenAIBaseURL         string    `mapstructure:"openai_base_url"`
	DefaultModel          string    `mapstructure:"default_model"`
	AllowedModels         []string  `mapstructure:"allowed_models"`
	LLMTimeoutSeconds     int       `mapstructure:"llm_timeout_seconds"`
	GatewayToken          string    `mapstructure:"gateway_token"`
	GatewayTokenFile      string    `mapstructure:"gateway_token_file"`
	LogLevel              string    `mapstructure:"log_level"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("database_dsn", "")
	v.SetDefault("connect_timeout_seconds", 5)
	v.SetDefault("statement_timeout_ms", 30000)
	v.SetDefault("app_name", "crimewatch-mcp")
	v.SetDefault("transport", string(TransportStdio))
	v.SetDefault("http_addr", "127.0.0.1")
	v.SetDefault("http_port", 8788)
	v.SetDefault("http_path", "/sse")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("default_model", "gpt-4o-mini")
	v.SetDefault("allowed_models", []string{"gpt-4o-mini"})
	v.SetDefault("llm_timeout_seconds", 45)
	v.SetDefault("gateway_token", "")
	v.SetDefault("gateway_token_file", "")
	v.SetDefault("log_level", "info")
}

func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("CRIMEWATCH_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flags override (parse early to locate config file)
	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	var cfgPathFlag string
	fs.StringVarP(&cfgPathFlag, "config", "c", "", "Config file path (yaml|json|toml)")
	fs.String("database-dsn", "", "Crime database DSN (postgres://...)")
	fs.String("dsn", "", "Crime database DSN (alias for database-dsn)")
	fs.Int("connect-timeout-seconds", 5, "Connection timeout in seconds")
	fs.Int("statement-timeout-ms", 30000, "Statement timeout in milliseconds")
	fs.String("app-name", "crimewatch-mcp", "Application name")
	fs.String("transport", string(TransportStdio), "Transport: stdio|sse|streamable")
	fs.String("http-addr", "127.0.0.1", "HTTP listen address (sse/streamable)")
	fs.Int("http-port", 8788, "HTTP listen port (sse/streamable)")
	fs.String("http-path", "/sse", "HTTP endpoint path (sse/streamable)")
	fs.String("openai-api-key", "", "OpenAI API key for planner/summarizer")
	fs.String("openai-base-url", "", "Override OpenAI API base URL")
	fs.String("default-model", "gpt-4o-mini", "Default chat-completion model")
	fs.StringSlice("allowed-models", []string{"gpt-4o-mini"}, "Allowed chat-completion models")
	fs.Int("llm-timeout-seconds", 45, "Chat-completion request timeout in seconds")
	fs.String("gateway-token", "", "Bearer token required on /proxy endpoints")
	fs.String("gateway-token-file", "", "File holding the gateway bearer token")
	fs.String("log-level", "info", "Log level")

	_ = fs.Parse(os.Args[1:])

	// Config file resolution
	cfgPath := cfgPathFlag
	if cfgPath == "" {
		cfgPath = os.Getenv("CRIMEWATCH_MCP_CONFIG")
	}
	if cfgPath != "" {
		if err := readConfigFile(v, cfgPath); err != nil {
			return Config{}, err
		}
	} else {
		_ = readDefaultConfig(v) // best-effort
	}

	// Flags override config
	_ = v.BindPFlags(fs)

	// positional DSN fallback
	if v.GetString("database_dsn") == "" {
		if dsn := v.GetString("dsn"); dsn != "" {
			v.Set("database_dsn", dsn)
		} else if args := fs.Args(); len(args) > 0 && args[0] != "" {
			v.Set("database_dsn", args[0])
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Transport {
	case TransportStdio, TransportSSE, TransportStreamable:
	default:
		return fmt.Errorf("config: transport must be one of [%s,%s,%s]", TransportStdio, TransportSSE, TransportStreamable)
	}
	if cfg.ConnectTimeoutSeconds <= 0 {
		return errors.New("config: connect_timeout_seconds must be > 0")
	}
	if cfg.StatementTimeoutMs <= 0 {
		return errors.New("config: statement_timeout_ms must be > 0")
	}
	if cfg.LLMTimeoutSeconds <= 0 {
		return errors.New("config: llm_timeout_seconds must be > 0")
	}
	if len(cfg.AllowedModels) == 0 {
		return errors.New("config: allowed_models must not be empty")
	}
	if !slices.Contains(cfg.AllowedModels, cfg.DefaultModel) {
		return fmt.Errorf("config: default_model %q is not in allowed_models", cfg.DefaultModel)
	}
	if cfg.GatewayToken != "" && cfg.GatewayTokenFile != "" {
		return errors.New("config: gateway_token and gateway_token_file are mutually exclusive")
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

func readDefaultConfig(v *viper.Viper) error {
	paths := defaultConfigCandidates()
	exts := []string{"yaml", "yml", "json", "toml"}
	for _, base := range paths {
		for _, ext := range exts {
			candidate := base + "." + ext
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read default config %s: %w", candidate, err)
				}
				return nil
			}
		}
	}
	return nil
}

func defaultConfigCandidates() []string {
	var out []string
	cwd, _ := os.Getwd()
	if cwd != "" {
		out = append(out,
			filepath.Join(cwd, "crimewatch-mcp"),
			filepath.Join(cwd, "config", "crimewatch-mcp"),
		)
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			xdg = filepath.Join(home, ".config")
		}
	}
	if xdg != "" {
		out = append(out, filepath.Join(xdg, "crimewatch-mcp", "config"))
	}
	return out
}
