package plic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config is shared by the daemon, the REPL and the side programs.
type Config struct {
	Socket      string     `yaml:"socket"`
	TraceDB     string     `yaml:"trace_db"`
	MaxTraces   int        `yaml:"max_traces"`
	LambdaASCII string     `yaml:"lambda_ascii"`
	TraceTokens bool       `yaml:"trace_tokens"`
	REPL        REPLConfig `yaml:"repl"`
	HTTP        HTTPConfig `yaml:"http"`
}

type REPLConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		Socket:      "/tmp/plic.sock",
		MaxTraces:   1000,
		LambdaASCII: string(DefaultLambdaASCII),
		REPL: REPLConfig{
			Prompt:      ">> ",
			HistoryFile: ".plic_history",
		},
		HTTP: HTTPConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path, or a path that does not exist, yields
// defaults plus overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: %w", err)
		default:
			defer f.Close()
			if err := decodeConfig(f, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PLIC_SOCK"); v != "" {
		c.Socket = v
	}
	if v := os.Getenv("PLIC_TRACE_DB"); v != "" {
		c.TraceDB = v
	}
	if v := os.Getenv("PLIC_MAX_TRACES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PLIC_MAX_TRACES: %w", err)
		}
		c.MaxTraces = n
	}
	if v := os.Getenv("PLIC_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Socket == "" {
		return fmt.Errorf("config: socket must not be empty")
	}
	if c.MaxTraces < 0 {
		return fmt.Errorf("config: max_traces must not be negative, got %d", c.MaxTraces)
	}
	if utf8.RuneCountInString(c.LambdaASCII) > 1 {
		return fmt.Errorf("config: lambda_ascii must be a single character, got %q", c.LambdaASCII)
	}
	return nil
}

// Options derives interpreter options from the config.
func (c Config) Options() Options {
	opts := Options{TraceTokens: c.TraceTokens}
	if r, _ := utf8.DecodeRuneInString(c.LambdaASCII); r != utf8.RuneError {
		opts.LambdaASCII = r
	}
	return opts
}

// ConfigPath returns $PLIC_CONFIG, falling back to plic.yaml.
func ConfigPath() string {
	if p := os.Getenv("PLIC_CONFIG"); p != "" {
		return p
	}
	return "plic.yaml"
}
