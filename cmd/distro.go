package cmd

import (
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/output"
	"github.com/projecteru2/waifuadmin/types"
)

var distroCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distro",
		Short: "Manage the distro catalog",
	}
	cmd.AddCommand(distroListCmd, distroGetCmd, distroCreateCmd, distroUpdateCmd, distroDeleteCmd)
	return cmd
}()

var distroListCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List distros",
		Args:    cobra.NoArgs,
		RunE:    runDistroList,
	}
	cmd.Flags().Bool("wide", false, "show format, checksum and source URL")
	addOutputFlags(cmd, output.FormatTable)
	return cmd
}()

var distroGetCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show one distro",
		Args:  cobra.ExactArgs(1),
		RunE:  runDistroGet,
	}
	addOutputFlags(cmd, output.FormatYAML)
	return cmd
}()

var distroCreateCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [flags] NAME",
		Short: "Add a distro to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistroSave(cmd, args, false)
		},
	}
	addDistroFlags(cmd)
	return cmd
}()

var distroUpdateCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [flags] NAME",
		Short: "Replace a distro in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistroSave(cmd, args, true)
		},
	}
	addDistroFlags(cmd)
	return cmd
}()

var distroDeleteCmd = &cobra.Command{
	Use:     "delete NAME [NAME...]",
	Aliases: []string{"rm"},
	Short:   "Remove distro(s) from the catalog",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDistroDelete,
}

func addDistroFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "image download URL")
	cmd.Flags().String("sha256", "", "image sha256 checksum (hex)")
	cmd.Flags().Int("min-size", 0, "minimum disk size in GB")
	cmd.Flags().String("format", types.DefaultDistroFormat, "image format")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("sha256")
	_ = cmd.MarkFlagRequired("min-size")
}

func runDistroList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	f, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}
	cli, err := initClient()
	if err != nil {
		return err
	}
	distros, err := cli.ListDistros(ctx)
	if err != nil {
		return fmt.Errorf("distro list: %w", err)
	}
	return printFormatted(f.FormatDistros(distros))
}

func runDistroGet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	f, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}
	cli, err := initClient()
	if err != nil {
		return err
	}
	d, err := cli.GetDistro(ctx, args[0])
	if err != nil {
		return fmt.Errorf("distro get: %w", err)
	}
	return printFormatted(f.FormatDistros([]types.Distro{*d}))
}

func runDistroSave(cmd *cobra.Command, args []string, update bool) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.distroSave")
	cli, err := initClient()
	if err != nil {
		return err
	}

	d := &types.Distro{Name: args[0]}
	d.DownloadURL, _ = cmd.Flags().GetString("url")
	d.Sha256Sum, _ = cmd.Flags().GetString("sha256")
	d.MinSize, _ = cmd.Flags().GetInt("min-size")
	d.Format, _ = cmd.Flags().GetString("format")
	if err := d.Validate(); err != nil {
		return err
	}

	save, verb := cli.CreateDistro, "created"
	if update {
		save, verb = cli.UpdateDistro, "updated"
	}
	saved, err := save(ctx, d)
	if err != nil {
		return err
	}
	logger.Infof(ctx, "%s distro %s (min %d GB)", verb, saved.Name, saved.MinSize)
	return nil
}

func runDistroDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.distroDelete")
	cli, err := initClient()
	if err != nil {
		return err
	}
	for _, name := range args {
		if err := cli.DeleteDistro(ctx, name); err != nil {
			return err
		}
		logger.Infof(ctx, "deleted distro: %s", name)
	}
	return nil
}
