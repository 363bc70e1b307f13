package cmd

import (
	"context"
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/waifuadmin/client"
	"github.com/projecteru2/waifuadmin/output"
	"github.com/projecteru2/waifuadmin/types"
)

var listCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "ps"},
		Short:   "List instances with their addresses",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}
	cmd.Flags().Bool("wide", false, "show disk, MAC, zvol and tailnet columns")
	addOutputFlags(cmd, output.FormatTable)
	return cmd
}()

func runList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	f, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}
	cli, err := initClient()
	if err != nil {
		return err
	}

	instances, err := cli.List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return printFormatted(f.FormatInstances(withAddresses(ctx, cli, instances, conf.PoolSize)))
}

// withAddresses looks up each instance's machine, at most limit at a time.
// A failed lookup leaves the address empty.
func withAddresses(ctx context.Context, cli *client.Client, instances []types.Instance, limit int) []output.InstanceRow {
	logger := log.WithFunc("cmd.withAddresses")
	rows := make([]output.InstanceRow, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, inst := range instances {
		rows[i].Instance = inst
		g.Go(func() error {
			m, err := cli.Machine(gctx, inst.UUID)
			if err != nil {
				logger.Warnf(ctx, "machine %s: %v", inst.Name, err)
				return nil
			}
			rows[i].Addr = m.Address()
			return nil
		})
	}
	_ = g.Wait()
	return rows
}
