// Package config loads the blackjack HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjackbot/internal/blackjack"
)

// DefaultFile is the config path used when none is given.
const DefaultFile = "blackjack.hcl"

// Config represents the complete configuration
type Config struct {
	Engine *EngineSettings `hcl:"engine,block"`
	Log    *LogSettings    `hcl:"log,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// EngineSettings holds the round timing in seconds.
type EngineSettings struct {
	ActionTimeout       int `hcl:"action_timeout,optional"`
	RestartDelay        int `hcl:"restart_delay,optional"`
	TimeoutRestartDelay int `hcl:"timeout_restart_delay,optional"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level string `hcl:"level,optional"`
}

// TableConfig declares a table by name.
type TableConfig struct {
	Name string `hcl:"name,label"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields Default().
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	if diags := gohcl.DecodeBody(file.Body, nil, &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	def := blackjack.DefaultTiming()
	if c.Engine == nil {
		c.Engine = &EngineSettings{}
	}
	if c.Engine.ActionTimeout == 0 {
		c.Engine.ActionTimeout = int(def.ActionTimeout / time.Second)
	}
	if c.Engine.RestartDelay == 0 {
		c.Engine.RestartDelay = int(def.RestartDelay / time.Second)
	}
	if c.Engine.TimeoutRestartDelay == 0 {
		c.Engine.TimeoutRestartDelay = int(def.TimeoutRestartDelay / time.Second)
	}
	if c.Log == nil {
		c.Log = &LogSettings{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.Tables) == 0 {
		c.Tables = []TableConfig{{Name: "#blackjack"}}
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	if c.Engine.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout must be positive")
	}
	if c.Engine.RestartDelay <= 0 {
		return fmt.Errorf("restart_delay must be positive")
	}
	if c.Engine.TimeoutRestartDelay <= 0 {
		return fmt.Errorf("timeout_restart_delay must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("table name must not be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("table %s declared twice", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Timing converts the engine settings for blackjack.WithTiming.
func (c *Config) Timing() blackjack.Timing {
	return blackjack.Timing{
		ActionTimeout:       time.Duration(c.Engine.ActionTimeout) * time.Second,
		RestartDelay:        time.Duration(c.Engine.RestartDelay) * time.Second,
		TimeoutRestartDelay: time.Duration(c.Engine.TimeoutRestartDelay) * time.Second,
	}
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// TableNames returns the configured table names in file order.
func (c *Config) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}
