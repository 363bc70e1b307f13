package admin

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/types"
	"github.com/projecteru2/waifuadmin/utils"
)

const testID = "6f1c1a52-4b0e-4c57-9d3e-0c6a1e0b9a11"

// fakeBackend is an in-memory waifud that records lifecycle calls.
type fakeBackend struct {
	instances []types.Instance
	distros   []types.Distro
	cfg       *types.Config
	actErr    error
	createErr error

	acts    []string
	deletes []string
	created []*types.NewInstance
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		instances: []types.Instance{{
			UUID: testID, Name: "crobat", Host: "logos", Distro: "debian12",
			Memory: 512, DiskSize: 25, Status: types.StatusRunning, JoinTailnet: true,
		}},
		distros: []types.Distro{
			{Name: "arch", MinSize: 4},
			{Name: "debian12", MinSize: 10},
		},
		cfg: &types.Config{Hosts: []string{"kos-mos", "logos"}},
	}
}

func (f *fakeBackend) calls() int { return len(f.acts) + len(f.deletes) }

func (f *fakeBackend) Act(_ context.Context, id string, a types.Action) error {
	f.acts = append(f.acts, id+"/"+a.Name())
	return f.actErr
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return f.actErr
}

func (f *fakeBackend) List(context.Context) ([]types.Instance, error) { return f.instances, nil }

func (f *fakeBackend) Get(_ context.Context, id string) (*types.Instance, error) {
	for i := range f.instances {
		if f.instances[i].UUID == id {
			return &f.instances[i], nil
		}
	}
	return nil, &utils.RemoteError{Method: http.MethodGet, Status: http.StatusNotFound, Body: "no such instance"}
}

func (f *fakeBackend) Machine(_ context.Context, id string) (*types.Machine, error) {
	return &types.Machine{UUID: id, Addr: types.Ptr("10.77.2.8")}, nil
}

func (f *fakeBackend) Create(_ context.Context, ni *types.NewInstance) (*types.Instance, error) {
	f.created = append(f.created, ni)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &types.Instance{UUID: testID, Name: "crobat", Host: ni.Host, Distro: ni.Distro}, nil
}

func (f *fakeBackend) ListDistros(context.Context) ([]types.Distro, error) { return f.distros, nil }

func (f *fakeBackend) GetConfig(context.Context) (*types.Config, error) { return f.cfg, nil }

func newTestServer(t *testing.T, f *fakeBackend) *Server {
	t.Helper()
	s, err := New(Settings{Backend: f})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, target string, form url.Values) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	resp := rec.Result()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

// --- routing ---

func TestNew_NilBackend(t *testing.T) {
	if _, err := New(Settings{}); err == nil {
		t.Fatal("expected error for nil backend")
	}
}

func TestHeartbeat(t *testing.T) {
	resp, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/heartbeat", nil)
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("expected 200 ok, got %d %q", resp.StatusCode, body)
	}
}

func TestAdminRedirectsToInstances(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	for _, path := range []string{"/", "/admin", "/admin/"} {
		resp, _ := do(t, s, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/instances" {
			t.Errorf("%s: expected redirect to /admin/instances, got %d %s", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

// --- pages ---

func TestListInstances(t *testing.T) {
	resp, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/admin/instances?message=hello", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, s := range []string{"crobat", "/admin/instances/" + testID, "512MiB", "hello"} {
		if !strings.Contains(body, s) {
			t.Errorf("body missing %q", s)
		}
	}
}

func TestInstanceDetail_ShowsButtons(t *testing.T) {
	resp, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/admin/instances/"+testID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, a := range types.Actions() {
		if !strings.Contains(body, "/admin/instances/"+testID+"/"+a.Name()) {
			t.Errorf("missing %s button", a)
		}
	}
	for _, s := range []string{"Recreate VM", "Delete instance", "10.77.2.8"} {
		if !strings.Contains(body, s) {
			t.Errorf("body missing %q", s)
		}
	}
}

func TestInstanceDetail_NotFound(t *testing.T) {
	resp, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/admin/instances/0b0c4f8e-3d55-4b57-8b1e-8f2d6d3c7a10", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "no such instance") {
		t.Errorf("expected remote body in page: %s", body)
	}
}

func TestListDistros(t *testing.T) {
	_, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/admin/distros", nil)
	if !strings.Contains(body, "debian12") || !strings.Contains(body, "10 GB") {
		t.Errorf("unexpected body: %s", body)
	}
}

// --- actions ---

func TestAction_NonDestructiveSendsOnce(t *testing.T) {
	f := newFakeBackend()
	resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/"+testID+"/reboot", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(f.acts) != 1 || f.acts[0] != testID+"/reboot" {
		t.Errorf("expected one reboot, got %v", f.acts)
	}
	if !strings.Contains(body, "VM Rebooted.") {
		t.Errorf("expected completion message: %s", body)
	}
}

func TestAction_DestructiveRendersConfirmation(t *testing.T) {
	for _, name := range []string{"reinit", "delete"} {
		t.Run(name, func(t *testing.T) {
			f := newFakeBackend()
			resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/"+testID+"/"+name, url.Values{})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if f.calls() != 0 {
				t.Errorf("expected no calls, got %d", f.calls())
			}
			if !strings.Contains(body, html.EscapeString("Type '"+action.ConfirmationPhrase+"' to continue.")) {
				t.Errorf("expected prompt: %s", body)
			}
			if !strings.Contains(body, "/admin/instances/"+testID+"/"+name+"/confirm") {
				t.Errorf("expected confirm form: %s", body)
			}
		})
	}
}

func TestConfirm_WrongPhrase(t *testing.T) {
	f := newFakeBackend()
	s := newTestServer(t, f)
	for _, text := range []string{"", "yes", "i don't care about the data"} {
		_, body := do(t, s, http.MethodPost, "/admin/instances/"+testID+"/delete/confirm", url.Values{"confirmation": {text}})
		if !strings.Contains(body, "Confirmation failed.") {
			t.Errorf("%q: expected failure message", text)
		}
	}
	if f.calls() != 0 {
		t.Errorf("expected no calls, got %d", f.calls())
	}
}

func TestConfirm_DeleteRedirects(t *testing.T) {
	f := newFakeBackend()
	resp, _ := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/"+testID+"/delete/confirm",
		url.Values{"confirmation": {action.ConfirmationPhrase}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	loc, _ := url.Parse(resp.Header.Get("Location"))
	if loc.Path != "/admin/instances" || loc.Query().Get("message") != types.ActionDelete.Message() {
		t.Errorf("unexpected redirect %s", loc)
	}
	if len(f.deletes) != 1 || len(f.acts) != 0 {
		t.Errorf("expected exactly one DELETE, got deletes=%v acts=%v", f.deletes, f.acts)
	}
}

func TestConfirm_ReinitSendsOnce(t *testing.T) {
	f := newFakeBackend()
	_, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/"+testID+"/reinit/confirm",
		url.Values{"confirmation": {action.ConfirmationPhrase}})
	if len(f.acts) != 1 || f.acts[0] != testID+"/reinit" {
		t.Errorf("expected one reinit, got %v", f.acts)
	}
	if !strings.Contains(body, "Recreating VM from scratch.") {
		t.Errorf("expected completion message: %s", body)
	}
}

func TestAction_RemoteFailure(t *testing.T) {
	f := newFakeBackend()
	f.actErr = &utils.RemoteError{Method: http.MethodPost, Status: http.StatusInternalServerError, Body: "libvirt unreachable"}
	resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/"+testID+"/start", url.Values{})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "libvirt unreachable") {
		t.Errorf("expected remote body: %s", body)
	}
	if f.calls() != 1 {
		t.Errorf("expected no retry, got %d calls", f.calls())
	}
}

func TestAction_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unknown action", "/admin/instances/" + testID + "/explode"},
		{"invalid id", "/admin/instances/not-a-uuid/reboot"},
		{"invalid id on confirm", "/admin/instances/not-a-uuid/delete/confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend()
			resp, _ := do(t, newTestServer(t, f), http.MethodPost, tt.path, url.Values{"confirmation": {action.ConfirmationPhrase}})
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
			if f.calls() != 0 {
				t.Errorf("expected no calls, got %d", f.calls())
			}
		})
	}
}

func TestReload_AddsConfirmation(t *testing.T) {
	f := newFakeBackend()
	s := newTestServer(t, f)
	s.Reload(Settings{Backend: f, Policy: action.Policy{Extra: []string{"shutdown"}}})

	_, body := do(t, s, http.MethodPost, "/admin/instances/"+testID+"/shutdown", url.Values{})
	if f.calls() != 0 {
		t.Errorf("expected no calls, got %d", f.calls())
	}
	if !strings.Contains(body, "/shutdown/confirm") {
		t.Errorf("expected confirmation page: %s", body)
	}
}

// --- create ---

func createValues(distro, disk string) url.Values {
	return url.Values{
		"name":         {"crobat"},
		"memory_mb":    {"2048"},
		"cpus":         {"2"},
		"host":         {"logos"},
		"distro":       {distro},
		"disk_size_gb": {disk},
		"zvol_prefix":  {"rpool/local/vms"},
		"user_data":    {"#cloud-config\n"},
		"join_tailnet": {"on"},
	}
}

func TestCreateForm_Defaults(t *testing.T) {
	_, body := do(t, newTestServer(t, newFakeBackend()), http.MethodGet, "/admin/instances/create", nil)
	for _, s := range []string{`value="25"`, `value="rpool/local/vms"`, "kos-mos", "debian12", "#cloud-config"} {
		if !strings.Contains(body, s) {
			t.Errorf("form missing %q", s)
		}
	}
}

func TestCreateForm_UserDataFromSettings(t *testing.T) {
	f := newFakeBackend()
	s, err := New(Settings{Backend: f, UserData: "#cloud-config\nhostname: pneuma\n"})
	if err != nil {
		t.Fatal(err)
	}
	_, body := do(t, s, http.MethodGet, "/admin/instances/create", nil)
	if !strings.Contains(body, "hostname: pneuma") {
		t.Errorf("expected configured user data in form")
	}
}

func TestCreateSubmit_RefreshClamps(t *testing.T) {
	f := newFakeBackend()
	form := createValues("debian12", "5")
	form.Set("refresh", "1")
	resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/create", form)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `name="disk_size_gb" value="10"`) {
		t.Errorf("expected disk size clamped to 10: %s", body)
	}
	if len(f.created) != 0 {
		t.Errorf("refresh must not create, got %d", len(f.created))
	}
}

func TestCreateSubmit_RedirectsToDetail(t *testing.T) {
	f := newFakeBackend()
	resp, _ := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/create", createValues("debian12", "32"))
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/instances/"+testID {
		t.Fatalf("expected redirect to detail, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	if len(f.created) != 1 {
		t.Fatalf("expected one create, got %d", len(f.created))
	}
	ni := f.created[0]
	if ni.Host != "logos" || ni.Distro != "debian12" || *ni.DiskSizeGB != 32 || *ni.MemoryMB != 2048 || !ni.JoinTailnet {
		t.Errorf("unexpected request %+v", ni)
	}
}

func TestCreateSubmit_TailnetUnchecked(t *testing.T) {
	f := newFakeBackend()
	form := createValues("arch", "25")
	form.Del("join_tailnet")
	_, _ = do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/create", form)
	if len(f.created) != 1 || f.created[0].JoinTailnet {
		t.Errorf("expected join_tailnet false, got %+v", f.created)
	}
}

func TestCreateSubmit_InvalidNumber(t *testing.T) {
	f := newFakeBackend()
	form := createValues("arch", "25")
	form.Set("memory_mb", "lots")
	resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/create", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "memory_mb") {
		t.Errorf("expected field error in page: %s", body)
	}
	if len(f.created) != 0 {
		t.Errorf("expected no create, got %d", len(f.created))
	}
}

func TestCreateSubmit_RemoteError(t *testing.T) {
	f := newFakeBackend()
	f.createErr = &utils.RemoteError{Method: http.MethodPost, Status: http.StatusInternalServerError, Body: "disk pool full"}
	resp, body := do(t, newTestServer(t, f), http.MethodPost, "/admin/instances/create", createValues("arch", "25"))
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "disk pool full") {
		t.Errorf("expected remote body in page: %s", body)
	}
}
