package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/projecteru2/waifuadmin/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "waifuadmin",
		Short:         "waifuadmin - admin front-end for waifud",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/waifuadmin/config.yaml)")
	defaults := config.DefaultConfig()
	cmd.PersistentFlags().String("server", defaults.Host, "waifud base URL")
	cmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level")

	_ = viper.BindPFlag("host", cmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("WAIFUADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cmd.AddCommand(
		listCmd,
		inspectCmd,
		createCmd,
		startCmd,
		shutdownCmd,
		rebootCmd,
		reinitCmd,
		deleteCmd,
		distroCmd,
		auditCmd,
		configCmd,
		serveCmd,
		versionCmd,
	)

	return cmd
}()

func initConfig() error {
	conf = config.DefaultConfig()

	if cfgFile == "" {
		if path, err := config.DefaultFile(); err == nil {
			cfgFile = path
		}
	}
	if cfgFile != "" {
		if err := readConfigFile(viper.GetViper(), cfgFile); err != nil {
			return err
		}
	}

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if conf.PoolSize <= 0 {
		conf.PoolSize = runtime.NumCPU()
	}
	if conf.HTTPTimeoutSeconds <= 0 {
		conf.HTTPTimeoutSeconds = 30 //nolint:mnd
	}
	if conf.WaitTimeoutSeconds <= 0 {
		conf.WaitTimeoutSeconds = 300 //nolint:mnd
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return log.SetupLog(context.Background(), &conf.Log, "")
}

// readConfigFile points v at path and reads it. A missing file is not an
// error; an unreadable or unparsable one is.
func readConfigFile(v *viper.Viper, path string) error {
	typ, err := config.FileType(path)
	if err != nil {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType(typ)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
