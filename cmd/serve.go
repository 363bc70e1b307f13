package cmd

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/admin"
	"github.com/projecteru2/waifuadmin/client"
	"github.com/projecteru2/waifuadmin/config"
)

var serveCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the admin UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", config.DefaultConfig().ListenAddr, "listen address")
	_ = viper.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))
	return cmd
}()

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.serve")

	settings, err := adminSettings(conf)
	if err != nil {
		return err
	}
	srv, err := admin.New(settings)
	if err != nil {
		return err
	}

	if path := watchableConfig(viper.GetViper()); path != "" {
		v := viper.GetViper()
		v.OnConfigChange(func(e fsnotify.Event) {
			reloadAdmin(ctx, v, srv, e)
		})
		v.WatchConfig()
		logger.Infof(ctx, "watching %s for changes", path)
	} else {
		logger.Infof(ctx, "no config file, live reload disabled")
	}

	logger.Infof(ctx, "waifud at %s", conf.Host)
	return srv.Run(ctx, conf.ListenAddr)
}

func adminSettings(c *config.Config) (admin.Settings, error) {
	cli, err := client.New(c.Host, c.HTTPTimeout())
	if err != nil {
		return admin.Settings{}, err
	}
	return admin.Settings{
		Backend:  cli,
		Policy:   action.Policy{Extra: c.ConfirmActions},
		UserData: c.UserData,
	}, nil
}

// watchableConfig returns the config file v reads from, or "" when there is
// none on disk for fsnotify to attach to.
func watchableConfig(v *viper.Viper) string {
	path := v.ConfigFileUsed()
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// reloadAdmin re-reads the config from v after a file change. An invalid
// file keeps the running settings.
func reloadAdmin(ctx context.Context, v *viper.Viper, srv *admin.Server, e fsnotify.Event) {
	logger := log.WithFunc("cmd.reloadAdmin")
	next := config.DefaultConfig()
	if err := v.Unmarshal(next); err != nil {
		logger.Errorf(ctx, err, "reload %s", e.Name)
		return
	}
	if err := next.Validate(); err != nil {
		logger.Errorf(ctx, err, "reload %s", e.Name)
		return
	}
	settings, err := adminSettings(next)
	if err != nil {
		logger.Errorf(ctx, err, "reload %s", e.Name)
		return
	}
	srv.Reload(settings)
	logger.Infof(ctx, "reloaded %s (%s): waifud at %s", e.Name, e.Op, next.Host)
}
