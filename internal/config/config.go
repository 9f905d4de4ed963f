// Package config loads agentmux's YAML configuration: the agent allow-list,
// debounce/max-wait tuning, the gateway bind address, and the session root
// directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level agentmux configuration.
type Config struct {
	Agents   AgentsConfig   `yaml:"agents"`
	Terminal TerminalConfig `yaml:"terminal"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Session  SessionConfig  `yaml:"session"`
}

// AgentsConfig is the allow-list of agent binaries Construct may spawn, per
// §6's "agent must be on a configured allow-list" requirement.
type AgentsConfig struct {
	Allowed []string `yaml:"allowed"`
}

// TerminalConfig holds the Debounce/Coalesce timing values. They are loaded
// and exposed through Debounce and MaxWait, but the session pipeline does not
// read them: internal/ptysession always uses its fixed 16ms quiet window and
// 200ms max-wait cap.
type TerminalConfig struct {
	DebounceMillis int `yaml:"debounce_millis"`
	MaxWaitMillis  int `yaml:"max_wait_millis"`
}

// GatewayConfig configures the WebSocket gateway.
type GatewayConfig struct {
	Addr        string `yaml:"addr"`
	DebugOutput bool   `yaml:"debug_output"`
}

// SessionConfig configures where session state and capture files live.
type SessionConfig struct {
	RootDir string `yaml:"root_dir"`
}

const defaultDebounceMillis = 16
const defaultMaxWaitMillis = 200
const defaultGatewayAddr = ":7890"

// ConfigDir returns the agentmux configuration directory (~/.agentmux/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".agentmux")
	}
	return filepath.Join(home, ".agentmux")
}

// Load reads the agentmux config from ~/.agentmux/config.yaml. If the file
// does not exist, it returns a populated-with-defaults Config with no error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads the config from the given path, same no-file-is-ok
// semantics as Load.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Terminal.DebounceMillis == 0 {
		c.Terminal.DebounceMillis = defaultDebounceMillis
	}
	if c.Terminal.MaxWaitMillis == 0 {
		c.Terminal.MaxWaitMillis = defaultMaxWaitMillis
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = defaultGatewayAddr
	}
	if c.Session.RootDir == "" {
		c.Session.RootDir = filepath.Join(ConfigDir(), "sessions")
	}
}

// Debounce returns the configured trailing-edge quiet window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Terminal.DebounceMillis) * time.Millisecond
}

// MaxWait returns the configured debounce max-wait cap.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.Terminal.MaxWaitMillis) * time.Millisecond
}

// AgentAllowed reports whether agent is permitted to be spawned, per §6.
// An empty allow-list permits nothing, not everything — an operator must
// opt an agent in explicitly.
func (c *Config) AgentAllowed(agent string) bool {
	for _, a := range c.Agents.Allowed {
		if a == agent {
			return true
		}
	}
	return false
}
