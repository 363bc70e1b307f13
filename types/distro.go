package types

import (
	_ "crypto/sha256" // registers SHA256 for go-digest validation
	"errors"
	"fmt"
	"net/url"

	godigest "github.com/opencontainers/go-digest"
)

// Distro describes an installable OS image in the waifud catalog.
type Distro struct {
	Name        string `json:"name"`
	DownloadURL string `json:"downloadURL"`
	Sha256Sum   string `json:"sha256Sum"`
	MinSize     int    `json:"minSize"` // GiB, floor for NewInstance.DiskSizeGB
	Format      string `json:"format"`
}

// DefaultDistroFormat is what waifud assumes for qcow2 base snapshots.
const DefaultDistroFormat = "waifud://qcow2"

// Validate checks a distro before it is sent to the catalog.
func (d *Distro) Validate() error {
	if d.Name == "" {
		return errors.New("distro name is required")
	}
	if d.MinSize <= 0 {
		return fmt.Errorf("distro %s: min size must be positive, got %d", d.Name, d.MinSize)
	}
	if err := godigest.NewDigestFromEncoded(godigest.SHA256, d.Sha256Sum).Validate(); err != nil {
		return fmt.Errorf("distro %s: sha256 %q: %w", d.Name, d.Sha256Sum, err)
	}
	u, err := url.Parse(d.DownloadURL)
	if err != nil {
		return fmt.Errorf("distro %s: download url: %w", d.Name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("distro %s: download url %q must be http(s)", d.Name, d.DownloadURL)
	}
	return nil
}

// FindDistro returns the distro named name, or nil.
func FindDistro(distros []Distro, name string) *Distro {
	for i := range distros {
		if distros[i].Name == name {
			return &distros[i]
		}
	}
	return nil
}
