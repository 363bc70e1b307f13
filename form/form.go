// Package form composes a NewInstance from operator input. It keeps the raw
// field values, clamps the disk size to the selected distro's minimum, and
// turns blanks into absent fields on Build.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/projecteru2/waifuadmin/types"
)

// Field names, also used as HTML form keys.
const (
	FieldName        = "name"
	FieldMemory      = "memory_mb"
	FieldCPUs        = "cpus"
	FieldHost        = "host"
	FieldDiskSize    = "disk_size_gb"
	FieldZvolPrefix  = "zvol_prefix"
	FieldDistro      = "distro"
	FieldUserData    = "user_data"
	FieldJoinTailnet = "join_tailnet"
)

// Defaults shown on a fresh form.
const (
	DefaultDiskSize   = "25"
	DefaultZvolPrefix = "rpool/local/vms"
)

// DefaultUserData is the cloud-init seed the operator edits before submit.
const DefaultUserData = `#cloud-config
#vim:syntax=yaml

users:
  - name: xe
    groups: [ wheel ]
    sudo: [ "ALL=(ALL) NOPASSWD:ALL" ]
    shell: /bin/bash
`

var (
	ErrNoHosts       = errors.New("waifud config lists no hosts")
	ErrUnknownHost   = errors.New("unknown host")
	ErrUnknownDistro = errors.New("unknown distro")
	ErrUnknownField  = errors.New("unknown form field")
)

// FieldError reports a numeric field that is not a positive base-10 integer.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q is not a positive whole number", e.Field, e.Value)
}

// Values are the raw form inputs.
type Values struct {
	Name        string
	Memory      string
	CPUs        string
	Host        string
	DiskSize    string
	ZvolPrefix  string
	Distro      string
	UserData    string
	JoinTailnet bool
}

// Controller holds one form's state against a distro catalog and waifud config.
type Controller struct {
	distros []types.Distro
	cfg     *types.Config
	v       Values
}

// New seeds a form with defaults: first host, first distro, 25 GiB disk,
// the default zvol prefix and cloud-init seed, tailnet on. The disk size is
// clamped for the initial distro.
func New(distros []types.Distro, cfg *types.Config) (*Controller, error) {
	if cfg == nil || len(cfg.Hosts) == 0 {
		return nil, ErrNoHosts
	}
	c := &Controller{
		distros: distros,
		cfg:     cfg,
		v: Values{
			Host:        cfg.Hosts[0],
			DiskSize:    DefaultDiskSize,
			ZvolPrefix:  DefaultZvolPrefix,
			UserData:    DefaultUserData,
			JoinTailnet: true,
		},
	}
	if len(distros) > 0 {
		c.v.Distro = distros[0].Name
		c.clamp()
	}
	return c, nil
}

// Load replaces every value with v (e.g. a submitted HTML form) and
// reapplies the clamp. Unknown host or distro are kept for Build to reject.
func (c *Controller) Load(v Values) bool {
	c.v = v
	return c.clamp()
}

// Values returns the current raw values.
func (c *Controller) Values() Values { return c.v }

// Distros returns the catalog the form was built from.
func (c *Controller) Distros() []types.Distro { return c.distros }

// Hosts returns the selectable hypervisor hosts.
func (c *Controller) Hosts() []string { return c.cfg.Hosts }

// SelectDistro switches the distro and clamps the disk size to its minimum.
// It reports whether the disk size was raised.
func (c *Controller) SelectDistro(name string) (bool, error) {
	if types.FindDistro(c.distros, name) == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownDistro, name)
	}
	c.v.Distro = name
	return c.clamp(), nil
}

// SetDiskSize records a disk size edit and clamps it to the selected
// distro's minimum. It reports whether the value was raised.
func (c *Controller) SetDiskSize(v string) bool {
	c.v.DiskSize = v
	return c.clamp()
}

// SelectHost switches the target hypervisor host.
func (c *Controller) SelectHost(host string) error {
	if !c.cfg.HasHost(host) {
		return fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
	c.v.Host = host
	return nil
}

// SetJoinTailnet toggles the tailnet checkbox.
func (c *Controller) SetJoinTailnet(on bool) { c.v.JoinTailnet = on }

// Set records a free-text field. Distro, host and disk size go through
// their own setters so the clamp and membership checks apply.
func (c *Controller) Set(field, value string) error {
	switch field {
	case FieldName:
		c.v.Name = value
	case FieldMemory:
		c.v.Memory = value
	case FieldCPUs:
		c.v.CPUs = value
	case FieldZvolPrefix:
		c.v.ZvolPrefix = value
	case FieldUserData:
		c.v.UserData = value
	case FieldDiskSize:
		c.SetDiskSize(value)
	case FieldHost:
		return c.SelectHost(value)
	case FieldDistro:
		_, err := c.SelectDistro(value)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// clamp raises the disk size to the selected distro's MinSize when the
// entered value parses and is below it. Unparseable input is left for
// Build to reject.
func (c *Controller) clamp() bool {
	d := types.FindDistro(c.distros, c.v.Distro)
	if d == nil {
		return false
	}
	size, err := strconv.Atoi(strings.TrimSpace(c.v.DiskSize))
	if err != nil || size >= d.MinSize {
		return false
	}
	c.v.DiskSize = strconv.Itoa(d.MinSize)
	return true
}

// Build turns the current values into a creation request. Blank optional
// fields become absent. Numeric fields must be positive base-10 integers.
func (c *Controller) Build() (*types.NewInstance, error) {
	if !c.cfg.HasHost(c.v.Host) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHost, c.v.Host)
	}
	if types.FindDistro(c.distros, c.v.Distro) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistro, c.v.Distro)
	}
	memory, err := optionalInt(FieldMemory, c.v.Memory)
	if err != nil {
		return nil, err
	}
	cpus, err := optionalInt(FieldCPUs, c.v.CPUs)
	if err != nil {
		return nil, err
	}
	disk, err := optionalInt(FieldDiskSize, c.v.DiskSize)
	if err != nil {
		return nil, err
	}
	return &types.NewInstance{
		Name:        optionalString(c.v.Name),
		MemoryMB:    memory,
		CPUs:        cpus,
		Host:        c.v.Host,
		DiskSizeGB:  disk,
		ZvolPrefix:  optionalString(c.v.ZvolPrefix),
		Distro:      c.v.Distro,
		UserData:    optionalString(c.v.UserData),
		JoinTailnet: c.v.JoinTailnet,
	}, nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(field, v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil //nolint:nilnil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return nil, &FieldError{Field: field, Value: v}
	}
	i := int(n)
	return &i, nil
}
