// Package admin serves the waifud admin pages: server-rendered HTML over the
// waifud API, with no client-side script. Destructive actions go through a
// typed confirmation page.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/waifuadmin/action"
	"github.com/projecteru2/waifuadmin/types"
)

// Backend is the part of the waifud API the pages use.
type Backend interface {
	action.Lifecycle
	List(ctx context.Context) ([]types.Instance, error)
	Get(ctx context.Context, id string) (*types.Instance, error)
	Machine(ctx context.Context, id string) (*types.Machine, error)
	Create(ctx context.Context, ni *types.NewInstance) (*types.Instance, error)
	ListDistros(ctx context.Context) ([]types.Distro, error)
	GetConfig(ctx context.Context) (*types.Config, error)
}

// Settings are the reloadable parts of the server.
type Settings struct {
	Backend Backend
	Policy  action.Policy
	// UserData replaces the built-in cloud-init seed on the create form.
	UserData string
}

// Server is an http.Handler for the admin pages. Each request reads the
// current Settings once; Reload swaps them for later requests.
type Server struct {
	cur   atomic.Pointer[Settings]
	pages *engine
	mux   *http.ServeMux
}

// New returns a Server using s.
func New(s Settings) (*Server, error) {
	if s.Backend == nil {
		return nil, errors.New("admin: nil backend")
	}
	pages, err := newEngine()
	if err != nil {
		return nil, err
	}
	srv := &Server{pages: pages}
	srv.cur.Store(&s)
	srv.mux = srv.routes()
	return srv, nil
}

// Reload replaces the settings used by subsequent requests.
func (s *Server) Reload(st Settings) {
	if st.Backend == nil {
		return
	}
	s.cur.Store(&st)
}

func (s *Server) settings() *Settings { return s.cur.Load() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := log.WithFunc("admin.Run")
	server := &http.Server{
		Addr:              addr,
		Handler:           logRequests(s),
		ReadHeaderTimeout: 15 * time.Second, //nolint:mnd
		IdleTimeout:       60 * time.Second, //nolint:mnd
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "admin UI listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve %s: %w", addr, err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Infof(ctx, "shutting down admin UI")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFunc("admin.http").Infof(r.Context(), "%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
