// internal/httpserver/routes_daily.go
//
// HTTP route for the daily exercise.
//   - GET /daily?date=YYYY-MM-DD → the exercise for that date (default today, UTC)
//     together with its interpreted Plan.
//
// Deterministic exercise selection is based on date + salt.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numviz/internal/daily"
	"github.com/robalobadob/numviz/internal/interpret"
)

// dailyRes is returned by /daily.
type dailyRes struct {
	Date     string         `json:"date"`
	Exercise daily.Exercise `json:"exercise"`
	Plan     interpret.Plan `json:"plan"`
}

// handleDaily returns the exercise of the requested day.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	day := s.now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
			return
		}
		day = t
	}

	ex, err := daily.Pick(day, s.cfg.DailySalt)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("pick daily exercise")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(dailyRes{
		Date:     daily.DateKey(day),
		Exercise: ex,
		Plan:     interpret.Interpret(ex.Mode, ex.Question),
	})
}
