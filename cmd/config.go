package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/config"
)

var configCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}
	cmd.AddCommand(configShowCmd, configRemoteCmd, configSetHostCmd, configSetUserDataCmd)
	return cmd
}()

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective local configuration (JSON)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return printJSON(conf)
	},
}

var configRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Show the waifud server configuration (JSON)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli, err := initClient()
		if err != nil {
			return err
		}
		remote, err := cli.GetConfig(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("config remote: %w", err)
		}
		return printJSON(remote)
	},
}

var configSetHostCmd = &cobra.Command{
	Use:   "set-host URL",
	Short: "Set the waifud base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		next := *conf
		next.Host = args[0]
		if err := next.Validate(); err != nil {
			return err
		}
		return saveConfig(cmd, "host", args[0])
	},
}

var configSetUserDataCmd = &cobra.Command{
	Use:   "set-userdata FILE",
	Short: "Set the default cloud-init user data from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		return saveConfig(cmd, "user_data", string(data))
	},
}

func saveConfig(cmd *cobra.Command, key string, value any) error {
	ctx := commandContext(cmd)
	path := cfgFile
	if path == "" {
		var err error
		if path, err = config.DefaultFile(); err != nil {
			return err
		}
	}
	if err := config.Save(ctx, path, key, value); err != nil {
		return err
	}
	log.WithFunc("cmd.config").Infof(ctx, "%s saved to %s", key, path)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
