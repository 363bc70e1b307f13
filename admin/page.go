package admin

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"

	"github.com/projecteru2/waifuadmin/form"
	"github.com/projecteru2/waifuadmin/types"
	"github.com/projecteru2/waifuadmin/version"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"instances", "instance", "confirm", "create", "distros", "error"}

var funcs = template.FuncMap{
	"mib": func(n int) string { return units.BytesSize(float64(n) * units.MiB) },
	"gib": func(n int) string { return units.BytesSize(float64(n) * units.GiB) },
}

// engine holds one template set per page, each parsed with the shared layout.
type engine struct {
	pages map[string]*template.Template
}

func newEngine() (*engine, error) {
	e := &engine{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		e.pages[name] = t
	}
	return e, nil
}

// render executes page name into a buffer first so a template error never
// leaves a half-written response.
func (e *engine) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := e.pages[name]
	if !ok {
		http.Error(w, "page "+name+" not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.WithFunc("admin.render").Errorf(r.Context(), err, "render %s", name)
		http.Error(w, "render "+name+": "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Page is the per-request state every view carries: the title and the
// message log shown under the page body.
type Page struct {
	Title    string
	Messages []string
}

func (p *Page) say(msg string) {
	if msg != "" {
		p.Messages = append(p.Messages, msg)
	}
}

// Version is shown in the footer.
func (p Page) Version() string { return version.VERSION }

type instancesView struct {
	Page
	Instances []types.Instance
}

type button struct {
	Action string
	Text   string
}

var buttonText = map[string]string{
	"reboot":     "Reboot",
	"hardreboot": "Hard Reboot",
	"reinit":     "Recreate VM",
	"shutdown":   "Shutdown",
	"start":      "Start",
	"delete":     "Delete instance",
}

func buttons() []button {
	var out []button
	for _, a := range types.Actions() {
		out = append(out, button{Action: a.Name(), Text: buttonText[a.Name()]})
	}
	return out
}

type instanceView struct {
	Page
	Instance *types.Instance
	Addr     string
	Buttons  []button
}

type confirmView struct {
	Page
	ID     string
	Action string
	Text   string
	Prompt string
}

type createView struct {
	Page
	Values  form.Values
	Distros []types.Distro
	Hosts   []string
}

type distrosView struct {
	Page
	Distros []types.Distro
}

type errorView struct {
	Page
	Err string
}
