package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/output"
)

var inspectCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect INSTANCE",
		Short: "Show one instance by name or UUID",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	addOutputFlags(cmd, output.FormatJSON)
	return cmd
}()

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	f, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}
	cli, err := initClient()
	if err != nil {
		return err
	}

	inst, err := cli.Resolve(ctx, args[0])
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return printFormatted(f.FormatInstance(inst))
}
