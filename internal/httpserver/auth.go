// internal/httpserver/auth.go
//
// Accounts over HTTP.
// Responsibilities:
//   - POST /auth/signup, /auth/login: issue a session token (cookie) and move
//     the caller's guest history onto the account.
//   - POST /auth/logout: drop the token cookie.
//   - GET /auth/me, GET /history/mine: require a signed-in learner.
//   - Middleware resolving the token (cookie or bearer header) to an account.
//
// Notes:
//   - Guests are tracked by an anonymous cookie so their questions can be
//     claimed later; it is only minted when a guest records something.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numviz/internal/accounts"
)

const anonCookieName = "numviz_anon"

// credentials is the payload for signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signedIn is returned by signup and login.
type signedIn struct {
	accounts.User
	Claimed int64 `json:"claimed"` // guest questions moved onto the account
}

// tokenClaims carries the account id as the JWT subject.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// mountAuthRoutes registers /auth/* and /history/mine.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.Group(func(r chi.Router) {
		r.Use(s.authenticate(true))
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(userFrom(r.Context()))
		})
		r.Get("/history/mine", s.handleMyHistory)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.accounts.Create(r.Context(), c.Username, c.Password)
	var invalid *accounts.ValidationError
	switch {
	case errors.Is(err, accounts.ErrUsernameTaken):
		http.Error(w, `{"error":"username_taken"}`, http.StatusConflict)
		return
	case errors.As(err, &invalid):
		body, _ := json.Marshal(map[string]string{"error": "invalid_credentials", "reason": invalid.Reason})
		http.Error(w, string(body), http.StatusBadRequest)
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("create account")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	hlog.FromRequest(r).Info().Str("user", u.ID).Msg("account created")
	s.signIn(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.accounts.Authenticate(r.Context(), c.Username, c.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		http.Error(w, `{"error":"invalid_credentials"}`, http.StatusUnauthorized)
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("authenticate")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.tokenCookie("", time.Time{}))
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// signIn issues the token cookie and claims the caller's guest history.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u accounts.User) {
	tok, exp, err := s.issueToken(u)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, s.tokenCookie(tok, exp))

	res := signedIn{User: u}
	if anonID := anonFrom(r); anonID != "" {
		n, err := s.history.Claim(r.Context(), anonID, u.ID)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("claim guest history")
		}
		res.Claimed = n
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.history.Recent(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load history")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ------------------------------ middleware ---------------------------------

// authenticate puts the signed-in account into the request context.
// With required set, requests without a valid token get a 401; otherwise
// they continue as guests.
func (s *Server) authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := s.accountFromToken(r)
			if !ok {
				if required {
					http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, &u)))
		})
	}
}

// accountFromToken verifies the request token and loads its account.
func (s *Server) accountFromToken(r *http.Request) (accounts.User, bool) {
	raw := tokenFrom(r, s.cfg.CookieName)
	if raw == "" {
		return accounts.User{}, false
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || claims.Subject == "" {
		return accounts.User{}, false
	}
	u, err := s.accounts.ByID(r.Context(), claims.Subject)
	if err != nil {
		return accounts.User{}, false
	}
	return u, true
}

// ------------------------------ tokens & cookies ---------------------------

// issueToken signs an HS256 token valid for JWT_EXPIRES_DAYS.
func (s *Server) issueToken(u accounts.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return signed, exp, err
}

// tokenCookie builds the auth cookie; an empty value deletes it.
func (s *Server) tokenCookie(value string, exp time.Time) *http.Cookie {
	c := s.cookie(s.cfg.CookieName, value)
	if value == "" {
		c.MaxAge = -1
	} else {
		c.Expires = exp
	}
	return c
}

// cookie applies the shared security attributes.
func (s *Server) cookie(name, value string) *http.Cookie {
	c := &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if s.cfg.Production {
		// SameSite=None is only honoured on Secure cookies
		c.Secure, c.SameSite = true, http.SameSiteNoneMode
	}
	return c
}

// ensureAnonID returns the guest id, minting and setting one if missing.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if id := anonFrom(r); id != "" {
		return id
	}
	id := uuid.NewString()
	c := s.cookie(anonCookieName, id)
	c.Expires = s.now().Add(180 * 24 * time.Hour)
	http.SetCookie(w, c)
	return id
}

func anonFrom(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil {
		return c.Value
	}
	return ""
}

// tokenFrom prefers "Authorization: Bearer <token>" over the cookie.
func tokenFrom(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
