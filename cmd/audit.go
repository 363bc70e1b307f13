package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/output"
)

var auditCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the waifud audit log",
		Args:  cobra.NoArgs,
		RunE:  runAudit,
	}
	addOutputFlags(cmd, output.FormatTable)
	return cmd
}()

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	f, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}
	cli, err := initClient()
	if err != nil {
		return err
	}
	events, err := cli.AuditLogs(ctx)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return printFormatted(f.FormatAudit(events))
}
