package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/types"
)

const pollInterval = 2 * time.Second

// settledStatus is the status --wait waits for after each action.
var settledStatus = map[string]types.InstanceStatus{
	types.ActionReboot.Name():     types.StatusRunning,
	types.ActionHardReboot.Name(): types.StatusRunning,
	types.ActionReinit.Name():     types.StatusRunning,
	types.ActionStart.Name():      types.StatusRunning,
	types.ActionShutdown.Name():   types.StatusOff,
}

var startCmd = newActionCmd(types.ActionStart, "start INSTANCE [INSTANCE...]", "Start instance(s)")

var shutdownCmd = newActionCmd(types.ActionShutdown, "shutdown INSTANCE [INSTANCE...]", "Shut down instance(s)", "stop")

var reinitCmd = newActionCmd(types.ActionReinit, "reinit INSTANCE [INSTANCE...]", "Recreate instance(s) from scratch, discarding their data")

var deleteCmd = newActionCmd(types.ActionDelete, "delete INSTANCE [INSTANCE...]", "Delete instance(s) and their data", "rm")

var rebootCmd = func() *cobra.Command {
	cmd := newActionCmd(types.ActionReboot, "reboot [flags] INSTANCE [INSTANCE...]", "Reboot instance(s)")
	cmd.Flags().Bool("hard", false, "hard reboot (reset without a guest shutdown)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a := types.ActionReboot
		if hard, _ := cmd.Flags().GetBool("hard"); hard {
			a = types.ActionHardReboot
		}
		return runAction(cmd, a, args)
	}
	return cmd
}()

func newActionCmd(a types.Action, use, short string, aliases ...string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, a, args)
		},
	}
	cmd.Flags().String("confirm", "", "confirmation phrase, for use without a terminal")
	if a != types.ActionDelete {
		cmd.Flags().Bool("wait", false, "wait until the instance settles")
	}
	return cmd
}

// runAction applies a to every referenced instance, stopping at the first
// failure. Instances are referenced by name or UUID.
func runAction(cmd *cobra.Command, a types.Action, refs []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd." + a.Name())
	cli, err := initClient()
	if err != nil {
		return err
	}
	wait, _ := cmd.Flags().GetBool("wait")

	for _, ref := range refs {
		inst, err := cli.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}

		d := action.New(cli, inst.UUID, policy())
		out := d.Request(ctx, a)
		if out.State == action.StateConfirming {
			text, err := readConfirmation(cmd, fmt.Sprintf("%s %s: %s", a, inst.Name, out.Prompt))
			if err != nil {
				return err
			}
			out = d.Confirm(ctx, a, text)
		}
		if out.State != action.StateCompleted {
			return fmt.Errorf("%s %s: %w", a, inst.Name, out.Err)
		}
		logger.Infof(ctx, "%s: %s", inst.Name, out.Message)

		if want, ok := settledStatus[a.Name()]; ok && wait {
			if _, err := cli.WaitStatus(ctx, inst.UUID, want, conf.WaitTimeout(), pollInterval, logPoll(ctx, logger)); err != nil {
				return err
			}
			logger.Infof(ctx, "%s is %s", inst.Name, want)
		}
	}
	return nil
}

type infoLogger interface {
	Infof(ctx context.Context, format string, args ...any)
}

// logPoll logs status changes seen while waiting.
func logPoll(ctx context.Context, logger infoLogger) func(*types.Instance) {
	last := ""
	return func(inst *types.Instance) {
		if inst.Status != last {
			logger.Infof(ctx, "%s: %s", inst.Name, inst.Status)
			last = inst.Status
		}
	}
}
