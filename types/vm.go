package types

// InstanceStatus is the server-defined lifecycle state of an instance.
// The set is owned by waifud; the values below are the ones the CLI waits on.
type InstanceStatus = string

const (
	StatusInit     InstanceStatus = "init"
	StatusRunning  InstanceStatus = "running"
	StatusOff      InstanceStatus = "off"
	StatusReinit   InstanceStatus = "reinit"
	StatusDeleting InstanceStatus = "deleting"
)

// NewInstance is the creation request for POST /api/v1/instances.
// Optional fields are pointers so that unset values are omitted from the
// JSON document and resolved to server-side defaults.
type NewInstance struct {
	Name        *string `json:"name,omitempty"`
	MemoryMB    *int    `json:"memory_mb,omitempty"`
	CPUs        *int    `json:"cpus,omitempty"`
	Host        string  `json:"host"`
	DiskSizeGB  *int    `json:"disk_size_gb,omitempty"`
	ZvolPrefix  *string `json:"zvol_prefix,omitempty"`
	Distro      string  `json:"distro"`
	UserData    *string `json:"user_data,omitempty"`
	JoinTailnet bool    `json:"join_tailnet"`
}

// Instance is a provisioned VM as reported by waifud. UUID is server-assigned
// and is the only reference used by lifecycle actions.
type Instance struct {
	UUID        string         `json:"uuid"`
	Name        string         `json:"name"`
	Host        string         `json:"host"`
	MACAddress  string         `json:"mac_address"`
	Memory      int            `json:"memory"`    // MiB
	DiskSize    int            `json:"disk_size"` // GiB
	ZvolName    string         `json:"zvol_name"`
	Status      InstanceStatus `json:"status"`
	Distro      string         `json:"distro"`
	JoinTailnet bool           `json:"join_tailnet"`
}

// Machine is the libvirt view of an instance on its host.
type Machine struct {
	Name       string  `json:"name"`
	Host       string  `json:"host"`
	Active     bool    `json:"active"`
	UUID       string  `json:"uuid"`
	Addr       *string `json:"addr,omitempty"`
	MemoryMegs uint64  `json:"memory_megs"`
}

// Address returns the machine's IP address, or "" when it has none yet.
func (m *Machine) Address() string {
	if m == nil || m.Addr == nil {
		return ""
	}
	return *m.Addr
}

// Ptr returns a pointer to v. Used to fill optional NewInstance fields.
func Ptr[T any](v T) *T { return &v }
