package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/client"
	"github.com/projecteru2/waifuadmin/form"
	"github.com/projecteru2/waifuadmin/types"
	"github.com/projecteru2/waifuadmin/utils"
)

// fail renders err with a status derived from its type.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var re *utils.RemoteError
	switch {
	case errors.Is(err, client.ErrInvalidID), errors.Is(err, types.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.As(err, &re):
		status = http.StatusBadGateway
	}
	log.WithFunc("admin.fail").Errorf(r.Context(), err, "%s %s", r.Method, r.URL.Path)
	s.pages.render(w, r, status, "error", errorView{Page: Page{Title: http.StatusText(status)}, Err: err.Error()})
}

func (s *Server) listInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := s.settings().Backend.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v := instancesView{Page: Page{Title: "Instances"}, Instances: instances}
	v.say(r.URL.Query().Get("message"))
	s.pages.render(w, r, http.StatusOK, "instances", v)
}

func (s *Server) instanceDetail(w http.ResponseWriter, r *http.Request) {
	s.renderInstance(w, r, s.settings(), r.PathValue("id"), http.StatusOK)
}

// renderInstance shows instance id with its action buttons and msgs appended
// to the message log. The machine address is best effort.
func (s *Server) renderInstance(w http.ResponseWriter, r *http.Request, st *Settings, id string, status int, msgs ...string) {
	ctx := r.Context()
	inst, err := st.Backend.Get(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v := instanceView{Page: Page{Title: inst.Name}, Instance: inst, Buttons: buttons()}
	if m, err := st.Backend.Machine(ctx, inst.UUID); err == nil {
		v.Addr = m.Address()
	} else {
		log.WithFunc("admin.renderInstance").Warnf(ctx, "machine %s: %v", inst.UUID, err)
	}
	for _, msg := range msgs {
		v.say(msg)
	}
	s.pages.render(w, r, status, "instance", v)
}

// parseActionRequest resolves the {id} and {action} path values.
func parseActionRequest(r *http.Request) (string, types.Action, error) {
	id, err := utils.NormalizeUUID(r.PathValue("id"))
	if err != nil {
		return "", types.Action{}, fmt.Errorf("%w: %v", client.ErrInvalidID, err)
	}
	a, err := types.ParseAction(r.PathValue("action"))
	if err != nil {
		return "", types.Action{}, err
	}
	return id, a, nil
}

func (s *Server) instanceAction(w http.ResponseWriter, r *http.Request) {
	id, a, err := parseActionRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st := s.settings()
	out := action.New(st.Backend, id, st.Policy).Request(r.Context(), a)
	s.renderOutcome(w, r, st, id, out)
}

func (s *Server) confirmAction(w http.ResponseWriter, r *http.Request) {
	id, a, err := parseActionRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := s.settings()
	out := action.New(st.Backend, id, st.Policy).Confirm(r.Context(), a, r.PostFormValue("confirmation"))
	s.renderOutcome(w, r, st, id, out)
}

func (s *Server) renderOutcome(w http.ResponseWriter, r *http.Request, st *Settings, id string, out action.Outcome) {
	switch {
	case out.State == action.StateConfirming:
		s.pages.render(w, r, http.StatusOK, "confirm", confirmView{
			Page:   Page{Title: "Confirm " + buttonText[out.Action.Name()]},
			ID:     id,
			Action: out.Action.Name(),
			Text:   buttonText[out.Action.Name()],
			Prompt: out.Prompt,
		})
	case out.State == action.StateCompleted && out.Action == types.ActionDelete:
		http.Redirect(w, r, "/admin/instances?message="+url.QueryEscape(out.Message), http.StatusSeeOther)
	case out.State == action.StateFailed:
		s.renderInstance(w, r, st, id, http.StatusBadGateway, out.Message)
	default:
		s.renderInstance(w, r, st, id, http.StatusOK, out.Message)
	}
}

// newForm builds a create form from the live catalog and waifud config.
func newForm(ctx context.Context, st *Settings) (*form.Controller, error) {
	distros, err := st.Backend.ListDistros(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := st.Backend.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	fc, err := form.New(distros, cfg)
	if err != nil {
		return nil, err
	}
	if st.UserData != "" {
		_ = fc.Set(form.FieldUserData, st.UserData)
	}
	return fc, nil
}

func newCreateView(fc *form.Controller) createView {
	return createView{
		Page:    Page{Title: "Create instance"},
		Values:  fc.Values(),
		Distros: fc.Distros(),
		Hosts:   fc.Hosts(),
	}
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	fc, err := newForm(r.Context(), s.settings())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.pages.render(w, r, http.StatusOK, "create", newCreateView(fc))
}

// createSubmit handles both the Refresh button, which re-renders the form
// after applying the disk size clamp, and the Create button.
func (s *Server) createSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithFunc("admin.createSubmit")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := s.settings()
	fc, err := newForm(ctx, st)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	clamped := fc.Load(formValues(r.PostForm))
	v := newCreateView(fc)
	if clamped {
		v.say(fmt.Sprintf("Disk size raised to %s GB, the minimum for %s.", v.Values.DiskSize, v.Values.Distro))
	}
	if r.PostForm.Has("refresh") {
		s.pages.render(w, r, http.StatusOK, "create", v)
		return
	}

	ni, err := fc.Build()
	if err != nil {
		v.say(err.Error())
		s.pages.render(w, r, http.StatusBadRequest, "create", v)
		return
	}
	inst, err := st.Backend.Create(ctx, ni)
	if err != nil {
		logger.Errorf(ctx, err, "create instance on %s", ni.Host)
		v.say(err.Error())
		s.pages.render(w, r, http.StatusBadGateway, "create", v)
		return
	}
	logger.Infof(ctx, "created %s (%s) on %s", inst.Name, inst.UUID, inst.Host)
	http.Redirect(w, r, "/admin/instances/"+inst.UUID, http.StatusSeeOther)
}

func formValues(f url.Values) form.Values {
	return form.Values{
		Name:        f.Get(form.FieldName),
		Memory:      f.Get(form.FieldMemory),
		CPUs:        f.Get(form.FieldCPUs),
		Host:        f.Get(form.FieldHost),
		DiskSize:    f.Get(form.FieldDiskSize),
		ZvolPrefix:  f.Get(form.FieldZvolPrefix),
		Distro:      f.Get(form.FieldDistro),
		UserData:    f.Get(form.FieldUserData),
		JoinTailnet: f.Has(form.FieldJoinTailnet),
	}
}

func (s *Server) listDistros(w http.ResponseWriter, r *http.Request) {
	distros, err := s.settings().Backend.ListDistros(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.pages.render(w, r, http.StatusOK, "distros", distrosView{Page: Page{Title: "Distros"}, Distros: distros})
}
