package config

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"time"

	coretypes "github.com/projecteru2/core/types"

	"github.com/projecteru2/waifuadmin/form"
	"github.com/projecteru2/waifuadmin/types"
)

// Config holds local waifuadmin configuration.
type Config struct {
	// Host is the waifud base URL, formatted as an http/https URL.
	// Env: WAIFUADMIN_HOST. Default: http://localhost:23818.
	Host string `json:"host" mapstructure:"host"`
	// UserData is the cloud-init document preloaded into the create form and
	// used by `create` when --user-data is not given.
	// Env: WAIFUADMIN_USER_DATA. Default: the built-in cloud-config seed.
	UserData string `json:"user_data" mapstructure:"user_data"`
	// ListenAddr is where `serve` binds the admin UI.
	// Env: WAIFUADMIN_LISTEN_ADDR. Default: :23819.
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
	// HTTPTimeoutSeconds bounds every waifud API call.
	// Default: 30.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds" mapstructure:"http_timeout_seconds"`
	// WaitTimeoutSeconds bounds --wait polling for an instance status.
	// Default: 300.
	WaitTimeoutSeconds int `json:"wait_timeout_seconds" mapstructure:"wait_timeout_seconds"`
	// PoolSize is the goroutine pool size for fan-out lookups (list --wide).
	// Defaults to runtime.NumCPU() if zero.
	PoolSize int `json:"pool_size" mapstructure:"pool_size"`
	// ConfirmActions lists non-destructive actions that must also be
	// confirmed with the phrase (e.g. ["shutdown"]). reinit and delete
	// always require it.
	ConfirmActions []string `json:"confirm_actions" mapstructure:"confirm_actions"`
	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() *Config {
	return &Config{
		Host:               "http://localhost:23818",
		UserData:           form.DefaultUserData,
		ListenAddr:         ":23819",
		HTTPTimeoutSeconds: 30, //nolint:mnd
		WaitTimeoutSeconds: 300, //nolint:mnd
		PoolSize:           runtime.NumCPU(),
		Log: coretypes.ServerLogConfig{
			Level: "info",
		},
	}
}

// Validate checks fields that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("host %q: %w", c.Host, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("host %q: must be an http(s) URL", c.Host)
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	for _, name := range c.ConfirmActions {
		if _, err := types.ParseAction(name); err != nil {
			return fmt.Errorf("confirm_actions: %w", err)
		}
	}
	return nil
}

// HTTPTimeout is HTTPTimeoutSeconds as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// WaitTimeout is WaitTimeoutSeconds as a duration.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}
