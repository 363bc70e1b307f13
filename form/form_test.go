package form

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/projecteru2/waifuadmin/types"
)

func testCatalog() ([]types.Distro, *types.Config) {
	distros := []types.Distro{
		{Name: "arch", MinSize: 4},
		{Name: "debian12", MinSize: 10},
		{Name: "nixos-unstable", MinSize: 30},
	}
	cfg := &types.Config{Hosts: []string{"kos-mos", "logos"}}
	return distros, cfg
}

func newController(t *testing.T) *Controller {
	t.Helper()
	distros, cfg := testCatalog()
	c, err := New(distros, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := newController(t)
	v := c.Values()
	if v.Host != "kos-mos" || v.Distro != "arch" {
		t.Errorf("expected first host and distro, got %+v", v)
	}
	if v.DiskSize != "25" || v.ZvolPrefix != "rpool/local/vms" || !v.JoinTailnet {
		t.Errorf("unexpected defaults: %+v", v)
	}
	if v.UserData != DefaultUserData {
		t.Errorf("expected cloud-init seed, got %q", v.UserData)
	}
}

func TestNew_ClampsForInitialDistro(t *testing.T) {
	c, err := New([]types.Distro{{Name: "big", MinSize: 40}}, &types.Config{Hosts: []string{"logos"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Values().DiskSize != "40" {
		t.Errorf("expected disk size 40, got %s", c.Values().DiskSize)
	}
}

func TestNew_NoHosts(t *testing.T) {
	if _, err := New(nil, &types.Config{}); !errors.Is(err, ErrNoHosts) {
		t.Errorf("expected ErrNoHosts, got %v", err)
	}
	if _, err := New(nil, nil); !errors.Is(err, ErrNoHosts) {
		t.Errorf("expected ErrNoHosts for nil config, got %v", err)
	}
}

func TestSelectDistro_Clamp(t *testing.T) {
	distros, _ := testCatalog()
	for _, d := range distros {
		for s := 1; s <= 40; s++ {
			c := newController(t)
			c.v.DiskSize = strconv.Itoa(s)
			clamped, err := c.SelectDistro(d.Name)
			if err != nil {
				t.Fatalf("select %s: %v", d.Name, err)
			}
			got := c.Values().DiskSize
			if s < d.MinSize {
				if !clamped || got != strconv.Itoa(d.MinSize) {
					t.Errorf("%s size %d: expected clamp to %d, got %s (clamped=%v)", d.Name, s, d.MinSize, got, clamped)
				}
			} else if clamped || got != strconv.Itoa(s) {
				t.Errorf("%s size %d: expected unchanged, got %s (clamped=%v)", d.Name, s, got, clamped)
			}
		}
	}
}

func TestSetDiskSize_ClampsOnEdit(t *testing.T) {
	c := newController(t)
	if !c.SetDiskSize("1") {
		t.Fatal("expected the edit to clamp")
	}
	clamped, err := c.SelectDistro("arch")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if clamped {
		t.Error("expected reselecting the same distro not to clamp again")
	}
	if got := c.Values().DiskSize; got != "4" {
		t.Errorf("expected 4, got %s", got)
	}
}

func TestSelectDistro_Scenario(t *testing.T) {
	c, err := New([]types.Distro{{Name: "debian12", MinSize: 10}}, &types.Config{Hosts: []string{"logos"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.v.DiskSize = "5" // typed before the distro change event fires
	if _, err := c.SelectDistro("debian12"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if c.Values().DiskSize != "10" {
		t.Errorf("expected 10, got %s", c.Values().DiskSize)
	}
}

func TestSelectDistro_Unknown(t *testing.T) {
	c := newController(t)
	if _, err := c.SelectDistro("windows"); !errors.Is(err, ErrUnknownDistro) {
		t.Errorf("expected ErrUnknownDistro, got %v", err)
	}
	if c.Values().Distro != "arch" {
		t.Errorf("expected selection to be unchanged, got %s", c.Values().Distro)
	}
}

func TestSetDiskSize(t *testing.T) {
	c := newController(t)
	if _, err := c.SelectDistro("debian12"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in      string
		want    string
		clamped bool
	}{
		{"3", "10", true},
		{"10", "10", false},
		{"50", "50", false},
		{"", "", false},
		{"lots", "lots", false},
	}
	for _, tt := range tests {
		clamped := c.SetDiskSize(tt.in)
		if got := c.Values().DiskSize; got != tt.want || clamped != tt.clamped {
			t.Errorf("SetDiskSize(%q): got %q clamped=%v, want %q clamped=%v", tt.in, got, clamped, tt.want, tt.clamped)
		}
	}
}

func TestBuild_AllFields(t *testing.T) {
	c := newController(t)
	for field, value := range map[string]string{
		FieldName:       "crobat",
		FieldMemory:     "2048",
		FieldCPUs:       "4",
		FieldHost:       "logos",
		FieldDistro:     "debian12",
		FieldDiskSize:   "32",
		FieldZvolPrefix: "rpool/safe/vms",
		FieldUserData:   "#cloud-config\n",
	} {
		if err := c.Set(field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
	c.SetJoinTailnet(false)

	ni, err := c.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := types.NewInstance{
		Name:        types.Ptr("crobat"),
		MemoryMB:    types.Ptr(2048),
		CPUs:        types.Ptr(4),
		Host:        "logos",
		DiskSizeGB:  types.Ptr(32),
		ZvolPrefix:  types.Ptr("rpool/safe/vms"),
		Distro:      "debian12",
		UserData:    types.Ptr("#cloud-config\n"),
		JoinTailnet: false,
	}
	got, _ := json.Marshal(ni)
	exp, _ := json.Marshal(want)
	if string(got) != string(exp) {
		t.Errorf("expected %s, got %s", exp, got)
	}
}

func TestBuild_BlankFieldsAreOmitted(t *testing.T) {
	c := newController(t)
	for _, f := range []string{FieldName, FieldMemory, FieldCPUs, FieldDiskSize, FieldZvolPrefix, FieldUserData} {
		if err := c.Set(f, ""); err != nil {
			t.Fatalf("set %s: %v", f, err)
		}
	}
	ni, err := c.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	body, _ := json.Marshal(ni)
	var m map[string]any
	_ = json.Unmarshal(body, &m)
	if len(m) != 3 {
		t.Errorf("expected only host, distro, join_tailnet; got %s", body)
	}
	for _, k := range []string{"host", "distro", "join_tailnet"} {
		if _, ok := m[k]; !ok {
			t.Errorf("expected %s in %s", k, body)
		}
	}
}

func TestBuild_HostScenario(t *testing.T) {
	c := newController(t)
	if err := c.SelectHost("logos"); err != nil {
		t.Fatalf("select host: %v", err)
	}
	ni, err := c.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ni.Host != "logos" {
		t.Errorf("expected host logos, got %s", ni.Host)
	}
}

func TestBuild_RejectsNonNumeric(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{FieldMemory, "lots"},
		{FieldCPUs, "2.5"},
		{FieldDiskSize, "ten"},
		{FieldMemory, "-512"},
		{FieldCPUs, "0"},
	}
	for _, tt := range tests {
		c := newController(t)
		if err := c.Set(tt.field, tt.value); err != nil {
			t.Fatalf("set: %v", err)
		}
		_, err := c.Build()
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Errorf("%s=%q: expected FieldError, got %v", tt.field, tt.value, err)
			continue
		}
		if fe.Field != tt.field {
			t.Errorf("expected field %s, got %s", tt.field, fe.Field)
		}
	}
}

func TestBuild_RejectsUnknownHostAndDistro(t *testing.T) {
	c := newController(t)
	if err := c.SelectHost("pneuma"); !errors.Is(err, ErrUnknownHost) {
		t.Errorf("expected ErrUnknownHost, got %v", err)
	}

	c.Load(Values{Host: "pneuma", Distro: "arch"})
	if _, err := c.Build(); !errors.Is(err, ErrUnknownHost) {
		t.Errorf("expected ErrUnknownHost, got %v", err)
	}
	c.Load(Values{Host: "logos", Distro: "windows"})
	if _, err := c.Build(); !errors.Is(err, ErrUnknownDistro) {
		t.Errorf("expected ErrUnknownDistro, got %v", err)
	}
}

func TestLoad_Clamps(t *testing.T) {
	c := newController(t)
	if !c.Load(Values{Host: "logos", Distro: "nixos-unstable", DiskSize: "8"}) {
		t.Error("expected clamp")
	}
	if c.Values().DiskSize != "30" {
		t.Errorf("expected 30, got %s", c.Values().DiskSize)
	}
}

func TestSet_UnknownField(t *testing.T) {
	c := newController(t)
	if err := c.Set("sata", "true"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}
