// internal/httpserver/routes_sessions.go
//
// HTTP routes for render sessions.
// Exposes five endpoints under /sessions:
//   - POST   /sessions             → create a session for {mode, question} and start its cycle
//   - GET    /sessions/{id}        → current snapshot (plan + reveal + number line)
//   - PUT    /sessions/{id}        → supply a question; same pair replays, new pair supersedes
//   - POST   /sessions/{id}/replay → restart the current question
//   - DELETE /sessions/{id}        → tear down; pending timers are cancelled
//
// Sessions are held in memory; their timers run on the server's scheduler.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numviz/internal/session"
)

// mountSessions registers all /sessions routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleNewSession)
		r.Get("/{id}", s.handleGetSession)
		r.Put("/{id}", s.handleSupplySession)
		r.Post("/{id}/replay", s.handleReplaySession)
		r.Delete("/{id}", s.handleDeleteSession)
	})
}

// newSessionRes is returned by POST /sessions.
type newSessionRes struct {
	SessionID string           `json:"sessionId"`
	Snapshot  session.Snapshot `json:"snapshot"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req questionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	userID, anonID := s.owner(w, r)
	ownerID := userID
	if ownerID == "" {
		ownerID = anonID
	}
	sess := session.New(s.sched, s.cfg.Timing, ownerID, req.Mode, req.Question)
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		sess.Close()
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	snap := sess.Snapshot()
	s.recordHistory(r, userID, anonID, snap.Plan)

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newSessionRes{SessionID: sess.ID, Snapshot: snap})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleSupplySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req questionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	userID, anonID := s.owner(w, r)
	plan := sess.Supply(req.Mode, req.Question)
	s.recordHistory(r, userID, anonID, plan)
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleReplaySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.Replay()
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"delete_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// lookupSession resolves {id}, writing a 404 when it is unknown.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
