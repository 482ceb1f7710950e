package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/server"
)

const (
	defaultIndentWidth = 2
	maxIndentWidth     = 16
	defaultAddr        = ":8080"
)

// Config is the on-disk configuration.
//
//	delimiter = "comma"
//	indent = 2
//	strict = false
//	color = "auto"
//
//	[server]
//	addr = ":8080"
//	token = ""
//	max_body_bytes = 8388608
type Config struct {
	Delimiter string       `toml:"delimiter"`
	Indent    int          `toml:"indent"`
	Strict    bool         `toml:"strict"`
	Color     string       `toml:"color"`
	Server    ServerConfig `toml:"server"`
}

// ServerConfig holds the [server] table.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	Token        string `toml:"token"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

func defaultConfig() Config {
	return Config{
		Delimiter: "comma",
		Indent:    defaultIndentWidth,
		Color:     colorAuto,
		Server: ServerConfig{
			Addr:         defaultAddr,
			MaxBodyBytes: server.DefaultMaxBodyBytes,
		},
	}
}

func (c Config) validate() error {
	if _, err := toon.ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if c.Indent < 1 || c.Indent > maxIndentWidth {
		return fmt.Errorf("indent must be between 1 and %d, got %d", maxIndentWidth, c.Indent)
	}
	if _, err := parseColorMode(c.Color); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	return nil
}

// defaultConfigPath returns the config file path using the XDG standard
// (~/.config/toon/config.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// readConfig loads path on top of the defaults. A missing file is only an
// error when the user named it explicitly.
func readConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); !explicit && errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
