package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
)

const lockRetryDelay = 100 * time.Millisecond

// DefaultFile is where the config lives when --config is not given:
// $XDG_CONFIG_HOME/waifuadmin/config.yaml.
func DefaultFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "waifuadmin", "config.yaml"), nil
}

// FileType returns the viper config type for path, taken from its
// extension. Files without an extension are read and written as YAML.
func FileType(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "yaml", nil
	}
	if !slices.Contains(viper.SupportedExts, ext) {
		return "", fmt.Errorf("config %s: unsupported extension %q (want one of %s)", path, ext, strings.Join(viper.SupportedExts, ", "))
	}
	return ext, nil
}

// Save sets key=value in the config file at path, keeping its other keys.
// The read-modify-write runs under an exclusive flock on path+".lock".
// Lock files are long-lived and never deleted.
func Save(ctx context.Context, path, key string, value any) error {
	typ, err := FileType(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire flock %s: %w", fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire flock %s: context done", fl.Path())
	}
	defer fl.Unlock() //nolint:errcheck

	// read under the lock so values written by others survive
	v := viper.New()
	v.SetConfigType(typ)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
