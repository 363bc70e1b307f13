package admin

import "net/http"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", redirectTo("/admin/instances"))
	mux.HandleFunc("GET /admin", redirectTo("/admin/instances"))
	mux.HandleFunc("GET /admin/{$}", redirectTo("/admin/instances"))

	mux.HandleFunc("GET /admin/instances", s.listInstances)
	mux.HandleFunc("GET /admin/instances/create", s.createForm)
	mux.HandleFunc("POST /admin/instances/create", s.createSubmit)
	mux.HandleFunc("GET /admin/instances/{id}", s.instanceDetail)
	mux.HandleFunc("POST /admin/instances/{id}/{action}", s.instanceAction)
	mux.HandleFunc("POST /admin/instances/{id}/{action}/confirm", s.confirmAction)
	mux.HandleFunc("GET /admin/distros", s.listDistros)

	mux.HandleFunc("GET /heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}
