package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numviz/internal/accounts"
	"github.com/robalobadob/numviz/internal/config"
	"github.com/robalobadob/numviz/internal/database"
	"github.com/robalobadob/numviz/internal/interpret"
	"github.com/robalobadob/numviz/internal/numline"
	"github.com/robalobadob/numviz/internal/sched"
	"github.com/robalobadob/numviz/internal/session"
)

type testEnv struct {
	srv   *Server
	clock *sched.Manual
	store session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "numviz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := config.Config{
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "numviz_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "test_salt",
		Timing:         session.DefaultTiming(),
	}
	clock := sched.NewManual()
	st := session.NewMemoryStore()
	return &testEnv{srv: New(cfg, st, db, clock), clock: clock, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFoundIsJSON(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	rec = e.do(t, http.MethodGet, `/quoted%22path`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, json.Valid(rec.Body.Bytes()), rec.Body.String())
	got := decode[map[string]string](t, rec)
	assert.Equal(t, `/quoted"path`, got["path"])
}

func TestInterpret(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/interpret", questionReq{Mode: "storyDiv", Question: "Share 17 cookies among 5 friends"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "arithmetic", got["kind"])
	arith := got["arithmetic"].(map[string]any)
	assert.Equal(t, float64(3), arith["quotient"])
	assert.Equal(t, float64(2), arith["remainder"])
	assert.Equal(t, "3 R 2", arith["answer"])
	assert.NotNil(t, cookieNamed(rec, anonCookieName), "guests get an anonymous id")
}

func TestInterpretDivideByZeroOmitsResult(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/interpret", questionReq{Mode: "numbers", Question: "8 ÷ 0"})
	require.Equal(t, http.StatusOK, rec.Code)
	arith := decode[map[string]any](t, rec)["arithmetic"].(map[string]any)
	assert.Equal(t, false, arith["defined"])
	assert.NotContains(t, arith, "value")
	assert.Equal(t, "", arith["answer"])
}

func TestInterpretUnsupportedMode(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/interpret", questionReq{Mode: "fractions", Question: "1/2"})
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[interpret.Plan](t, rec)
	assert.Equal(t, interpret.KindUnsupported, plan.Kind)
	assert.Contains(t, plan.Message, "not implemented")
}

func TestInterpretBadJSON(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/interpret", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/sessions", questionReq{Mode: "numLine", Question: "7 - 3"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[newSessionRes](t, rec)
	require.NotEmpty(t, created.SessionID)
	path := "/sessions/" + created.SessionID

	snap := created.Snapshot
	assert.True(t, snap.Reveal.GroupA)
	assert.False(t, snap.Reveal.GroupB)
	require.NotNil(t, snap.NumberLine)
	assert.Equal(t, numline.StatePositioned, snap.NumberLine.State)
	assert.Equal(t, numline.Range{Min: 2, Max: 10}, snap.NumberLine.Range)

	e.clock.Advance(1500 * time.Millisecond)
	snap = decode[session.Snapshot](t, e.do(t, http.MethodGet, path, nil))
	assert.True(t, snap.Reveal.GroupB)
	assert.False(t, snap.Reveal.Result)
	assert.Equal(t, 6, snap.NumberLine.Current)

	e.clock.Advance(1500 * time.Millisecond)
	snap = decode[session.Snapshot](t, e.do(t, http.MethodGet, path, nil))
	assert.True(t, snap.Reveal.Result)
	assert.Equal(t, 4, snap.NumberLine.Current)
	assert.Equal(t, numline.StateSettled, snap.NumberLine.State)

	// Same question again: replays from the start.
	rec = e.do(t, http.MethodPut, path, questionReq{Mode: "numLine", Question: "7 - 3"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	assert.Equal(t, 2, snap.Cycle)
	assert.False(t, snap.Reveal.GroupB)
	assert.Equal(t, 7, snap.NumberLine.Current)

	// A different question supersedes the walk.
	rec = e.do(t, http.MethodPut, path, questionReq{Mode: "blocks", Question: "What is the value of 5 in 1253?"})
	snap = decode[session.Snapshot](t, rec)
	assert.Nil(t, snap.NumberLine)
	require.NotNil(t, snap.Plan.PlaceValue)
	assert.Equal(t, 50, snap.Plan.PlaceValue.Value)

	rec = e.do(t, http.MethodPost, path+"/replay", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[session.Snapshot](t, rec).Cycle)

	rec = e.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, e.clock.Pending(), "tear-down cancels pending reveals")
	assert.Zero(t, e.store.Len())

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, path, nil).Code)
}

func TestSessionUnknown(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/sessions/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/sessions/missing", questionReq{Mode: "blocks"}).Code)
}

func TestStylesheet(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/assets/viz.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, rec.Body.String(), ".numviz")

	req := httptest.NewRequest(http.MethodGet, "/assets/viz.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestDaily(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/daily?date=2026-10-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dailyRes](t, rec)
	assert.Equal(t, "2026-10-14", got.Date)
	_, ok := interpret.ParseMode(got.Exercise.Mode)
	assert.True(t, ok)
	assert.Equal(t, got.Exercise.Mode, got.Plan.Mode)

	again := decode[dailyRes](t, e.do(t, http.MethodGet, "/daily?date=2026-10-14", nil))
	assert.Equal(t, got.Exercise, again.Exercise)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/daily?date=yesterday", nil).Code)
}

func TestAuthAndHistory(t *testing.T) {
	e := newTestEnv(t)

	// Guest activity before signing up is claimed by the new account.
	rec := e.do(t, http.MethodPost, "/interpret", questionReq{Mode: "blocks", Question: "show 46"})
	anon := cookieNamed(rec, anonCookieName)
	require.NotNil(t, anon)

	rec = e.do(t, http.MethodPost, "/auth/signup", credentials{Username: "ada_l", Password: "correct horse"}, anon)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), decode[signedIn](t, rec).Claimed)
	token := cookieNamed(rec, "numviz_token")
	require.NotNil(t, token)

	rec = e.do(t, http.MethodGet, "/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada_l", decode[accounts.User](t, rec).Username)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec = httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "bearer header works like the cookie")

	rec = e.do(t, http.MethodPost, "/sessions", questionReq{Mode: "storyAdd", Question: "2 and 3"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, cookieNamed(rec, anonCookieName), "signed-in users need no anonymous id")

	rec = e.do(t, http.MethodGet, "/history/mine", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "2 and 3", rows[0]["question"])
	assert.Equal(t, "show 46", rows[1]["question"])

	// Duplicate usernames conflict regardless of case.
	rec = e.do(t, http.MethodPost, "/auth/signup", credentials{Username: "ADA_L", Password: "another pass"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPost, "/auth/login", credentials{Username: "ada_l", Password: "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, http.MethodPost, "/auth/login", credentials{Username: "ada_l", Password: "correct horse"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[signedIn](t, rec).Claimed)
	assert.Nil(t, cookieNamed(rec, anonCookieName), "signing in does not mint a guest id")

	rec = e.do(t, http.MethodPost, "/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookieNamed(rec, "numviz_token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestRequireAuth(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/history/mine", nil).Code)
	bogus := &http.Cookie{Name: "numviz_token", Value: "not-a-jwt"}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/auth/me", nil, bogus).Code)
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/signup", credentials{Username: "ab", Password: "longenough"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodPost, "/auth/signup", credentials{Username: "valid_name", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["reason"], "password")
}
