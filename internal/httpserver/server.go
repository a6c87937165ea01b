// internal/httpserver/server.go
//
// HTTP server wiring for the numviz backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/assets/viz.css".
//   - Interpretation (optional auth): POST /interpret.
//   - Render sessions (optional auth): mounted under /sessions.
//   - Daily exercise: GET /daily.
//   - Auth + history endpoints: /auth/*, /history/mine.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes can still run for guests, who are tracked by an anonymous cookie.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numviz/assets"
	"github.com/robalobadob/numviz/internal/accounts"
	"github.com/robalobadob/numviz/internal/config"
	"github.com/robalobadob/numviz/internal/history"
	"github.com/robalobadob/numviz/internal/interpret"
	"github.com/robalobadob/numviz/internal/sched"
	"github.com/robalobadob/numviz/internal/session"
)

// Server bundles router, session store, scheduler and DB handle.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	sessions session.Store
	sched    sched.Scheduler
	db       *sql.DB
	history  *history.Store
	accounts *accounts.Store
	css      assets.Stylesheet
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st session.Store, db *sql.DB, sch sched.Scheduler) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		sessions: st,
		sched:    sch,
		db:       db,
		history:  history.NewStore(db),
		accounts: accounts.NewStore(db),
		now:      time.Now,
	}
	css, err := assets.RegisterStylesheet()
	if err != nil {
		log.Error().Err(err).Msg("register stylesheet")
	}
	s.css = css

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"numviz","endpoints":["/health","POST /interpret","/sessions","/daily","/assets/viz.css","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/assets/viz.css", s.handleStylesheet)

	// Interpretation + sessions: optional auth (guests can use them)
	s.r.With(s.authenticate(false)).Post("/interpret", s.handleInterpret)
	s.mountSessions(s.r.With(s.authenticate(false)))
	s.r.Get("/daily", s.handleDaily)

	// Auth + history (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]string{"error": "not_found", "path": r.URL.Path})
		http.Error(w, string(body), http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", dur).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request")
})

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ ASSETS -------------------------------------

// handleStylesheet serves the stylesheet registered at startup.
func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	if len(s.css.Body) == 0 {
		http.Error(w, `{"error":"stylesheet_unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("ETag", s.css.ETag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Header.Get("If-None-Match") == s.css.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(s.css.Body)
}

// ---------------------------- INTERPRET ------------------------------------

// questionReq is the payload for POST /interpret and the session routes.
type questionReq struct {
	Mode     string `json:"mode"`
	Question string `json:"question"`
}

// handleInterpret returns the Plan for a question without starting timers.
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req questionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	userID, anonID := s.owner(w, r)
	plan := interpret.Interpret(req.Mode, req.Question)
	s.recordHistory(r, userID, anonID, plan)
	_ = json.NewEncoder(w).Encode(plan)
}

// recordHistory stores the interpreted question for its owner (best effort).
func (s *Server) recordHistory(r *http.Request, userID, anonID string, plan interpret.Plan) {
	e := history.Entry{UserID: userID, AnonymousID: anonID, Mode: plan.Mode, Question: plan.Question, Kind: string(plan.Kind)}
	if err := s.history.Record(r.Context(), e); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("record history")
	}
}

// owner identifies the caller: the signed-in user, otherwise the anonymous cookie.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (userID, anonID string) {
	if me := userFrom(r.Context()); me != nil {
		return me.ID, ""
	}
	return "", s.ensureAnonID(w, r)
}

// ctxUserKey is the context key for the signed-in *accounts.User.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *accounts.User {
	me, _ := ctx.Value(ctxUserKey{}).(*accounts.User)
	return me
}
