package output

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"

	"github.com/projecteru2/waifuadmin/types"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
	// Wide adds the less common columns.
	Wide bool
}

// FormatInstance formats a single instance as a one-row table.
func (f *TableFormatter) FormatInstance(inst *types.Instance) (string, error) {
	return f.FormatInstances([]InstanceRow{{Instance: *inst}})
}

// FormatInstances formats instances as a table. Memory is MiB and disk GiB
// on the wire; both are shown as human sizes.
func (f *TableFormatter) FormatInstances(rows []InstanceRow) (string, error) {
	if len(rows) == 0 {
		return "No instances found\n", nil
	}
	return f.table(func(w *tabwriter.Writer) {
		if !f.NoHeaders {
			if f.Wide {
				_, _ = fmt.Fprintln(w, "NAME\tHOST\tDISTRO\tMEMORY\tDISK\tIP\tSTATUS\tMAC\tZVOL\tTAILNET\tID")
			} else {
				_, _ = fmt.Fprintln(w, "NAME\tHOST\tDISTRO\tMEMORY\tIP\tSTATUS\tID")
			}
		}
		for _, r := range rows {
			ip := dash(r.Addr)
			mem := units.BytesSize(float64(r.Memory) * units.MiB)
			if f.Wide {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					r.Name, r.Host, r.Distro, mem,
					units.BytesSize(float64(r.DiskSize)*units.GiB),
					ip, dash(r.Status), dash(r.MACAddress), dash(r.ZvolName), r.JoinTailnet, r.UUID)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Name, r.Host, r.Distro, mem, ip, dash(r.Status), r.UUID)
		}
	}), nil
}

// FormatDistros formats the catalog; Wide adds checksum and source URL.
func (f *TableFormatter) FormatDistros(distros []types.Distro) (string, error) {
	if len(distros) == 0 {
		return "No distros found\n", nil
	}
	return f.table(func(w *tabwriter.Writer) {
		if !f.NoHeaders {
			if f.Wide {
				_, _ = fmt.Fprintln(w, "NAME\tMIN SIZE\tFORMAT\tSHA256\tURL")
			} else {
				_, _ = fmt.Fprintln(w, "NAME\tMIN SIZE")
			}
		}
		for _, d := range distros {
			size := strconv.Itoa(d.MinSize) + " GB"
			if f.Wide {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Name, size, dash(d.Format), dash(d.Sha256Sum), dash(d.DownloadURL))
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", d.Name, size)
		}
	}), nil
}

// FormatAudit formats audit events with local timestamps.
func (f *TableFormatter) FormatAudit(events []types.AuditEvent) (string, error) {
	if len(events) == 0 {
		return "No audit events found\n", nil
	}
	return f.table(func(w *tabwriter.Writer) {
		if !f.NoHeaders {
			_, _ = fmt.Fprintln(w, "TIMESTAMP\tKIND\tNAME\tOP")
		}
		for _, e := range events {
			name := "-"
			if e.Name != nil && *e.Name != "" {
				name = *e.Name
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				time.Unix(e.TS, 0).Local().Format(time.DateTime), e.Kind, name, e.Op)
		}
	}), nil
}

func (f *TableFormatter) table(fill func(w *tabwriter.Writer)) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fill(w)
	_ = w.Flush()
	return buf.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
