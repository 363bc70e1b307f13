package cmd

import (
	"fmt"
	"os"
	"strconv"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/projecteru2/waifuadmin/form"
	"github.com/projecteru2/waifuadmin/output"
	"github.com/projecteru2/waifuadmin/types"
)

var createCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [flags]",
		Short: "Create an instance",
		Args:  cobra.NoArgs,
		RunE:  runCreate,
	}
	addCreateFlags(cmd)
	addOutputFlags(cmd, output.FormatTable)
	return cmd
}()

func addCreateFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "instance name (generated by waifud when empty)")
	cmd.Flags().String("memory", "", "memory size, e.g. 2G or 512M; a bare number is MiB (waifud default when empty)")
	cmd.Flags().Int("cpus", 0, "vCPU count (waifud default when 0)")
	cmd.Flags().String("host", "", "hypervisor host to place the instance on (first configured host when empty)")
	cmd.Flags().String("distro", "", "distro name (first catalog entry when empty)")
	cmd.Flags().String("disk-size", form.DefaultDiskSize, "disk size in GB, raised to the distro minimum")
	cmd.Flags().String("zvol", form.DefaultZvolPrefix, "ZFS volume prefix")
	cmd.Flags().String("user-data", "", "cloud-init user data file (configured user_data when empty)")
	cmd.Flags().Bool("join-tailnet", true, "join the tailnet on first boot")
	cmd.Flags().Bool("wait", false, "wait until the instance is running")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.create")
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
		return fmt.Errorf("create: %w", err)
	}
	remote, err := cli.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	fc, err := form.New(distros, remote)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := fillForm(cmd, fc); err != nil {
		return err
	}

	ni, err := fc.Build()
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	inst, err := cli.Create(ctx, ni)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	logger.Infof(ctx, "created %s (%s) on %s", inst.Name, inst.UUID, inst.Host)

	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		if inst, err = cli.WaitStatus(ctx, inst.UUID, types.StatusRunning, conf.WaitTimeout(), pollInterval, logPoll(ctx, logger)); err != nil {
			return err
		}
	}
	return printFormatted(f.FormatInstance(inst))
}

// fillForm applies the flags to fc in the order the admin form would see
// them: distro first so that --disk-size is clamped against it.
func fillForm(cmd *cobra.Command, fc *form.Controller) error {
	ctx := commandContext(cmd)
	logger := log.WithFunc("cmd.fillForm")
	flags := cmd.Flags()

	if host, _ := flags.GetString("host"); host != "" {
		if err := fc.SelectHost(host); err != nil {
			return fmt.Errorf("--host %q: %w (known: %v)", host, err, fc.Hosts())
		}
	}
	if distro, _ := flags.GetString("distro"); distro != "" {
		if _, err := fc.SelectDistro(distro); err != nil {
			return fmt.Errorf("--distro %q: %w", distro, err)
		}
	}
	size, _ := flags.GetString("disk-size")
	if fc.SetDiskSize(size) {
		logger.Warnf(ctx, "disk size raised to %s GB, the minimum for %s", fc.Values().DiskSize, fc.Values().Distro)
	}

	name, _ := flags.GetString("name")
	zvol, _ := flags.GetString("zvol")
	set := map[string]string{form.FieldName: name, form.FieldZvolPrefix: zvol}

	if mem, _ := flags.GetString("memory"); mem != "" {
		mib, err := parseMemoryMiB(mem)
		if err != nil {
			return err
		}
		set[form.FieldMemory] = strconv.FormatInt(mib, 10)
	}
	if cpus, _ := flags.GetInt("cpus"); cpus != 0 {
		set[form.FieldCPUs] = strconv.Itoa(cpus)
	}

	userData := conf.UserData
	if path, _ := flags.GetString("user-data"); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return fmt.Errorf("read --user-data: %w", err)
		}
		userData = string(data)
	}
	set[form.FieldUserData] = userData

	for field, value := range set {
		if err := fc.Set(field, value); err != nil {
			return err
		}
	}
	join, _ := flags.GetBool("join-tailnet")
	fc.SetJoinTailnet(join)
	return nil
}

// parseMemoryMiB reads --memory. A bare number is MiB, matching the admin
// form; anything else goes through units.RAMInBytes.
func parseMemoryMiB(mem string) (int64, error) {
	if n, err := strconv.ParseInt(mem, 10, 64); err == nil {
		return n, nil
	}
	b, err := units.RAMInBytes(mem)
	if err != nil {
		return 0, fmt.Errorf("invalid --memory %q: %w", mem, err)
	}
	if b < units.MiB {
		return 0, fmt.Errorf("invalid --memory %q: less than 1 MiB", mem)
	}
	return b / units.MiB, nil
}
