// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice   PracticeConfig   `toml:"practice"`
	Dictionary DictionaryConfig `toml:"dictionary"`
	Stats      StatsConfig      `toml:"stats"`
}

// PracticeConfig maps drill settings. Nil fields are unset.
type PracticeConfig struct {
	Mode          *string `toml:"mode"`
	Budget        *int    `toml:"budget"`
	Step          *int    `toml:"step"`
	MemorizeDelay *string `toml:"memorize-delay"`
}

// DictionaryConfig maps definition lookup settings.
type DictionaryConfig struct {
	BaseURL     *string `toml:"base-url"`
	Timeout     *string `toml:"timeout"`
	Concurrency *int    `toml:"concurrency"`
}

// StatsConfig maps stats output settings.
type StatsConfig struct {
	CurveWindow *int `toml:"curve-window"`
	WeakTop     *int `toml:"weak-top"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by the config command when no file exists yet.
const Template = `# wordtrainer configuration

[practice]
# mode = "copy"          # copy or memorize
# budget = 8             # initial window size in characters
# step = 4               # budget change per window
# memorize-delay = "3s"  # how long memorize mode shows the text

[dictionary]
# base-url = "https://api.dictionaryapi.dev/api/v2/entries/en"
# timeout = "5s"
# concurrency = 4

[stats]
# curve-window = 20
# weak-top = 8
`
