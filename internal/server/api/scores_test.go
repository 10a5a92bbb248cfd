package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/arcade/internal/store"
)

func TestScoreHandler_Scores(t *testing.T) {
	ta := newTestAPI(t)

	resp := decodeBody[listScoresResponse](t, ta.do(t, http.MethodGet, "/api/scores", ""))
	if resp.Scores == nil || len(resp.Scores) != 0 {
		t.Errorf("empty scores = %v, want []", resp.Scores)
	}

	ta.store.Scores().Submit("snake", "hard", 120)
	ta.store.Scores().Submit("slicer", "medium", 40)

	resp = decodeBody[listScoresResponse](t, ta.do(t, http.MethodGet, "/api/scores", ""))
	if len(resp.Scores) != 2 || resp.Scores[0].Game != "snake" || resp.Scores[0].Score != 120 {
		t.Errorf("scores = %+v", resp.Scores)
	}
}

func TestScoreHandler_Sessions(t *testing.T) {
	ta := newTestAPI(t)
	for _, s := range []*store.Session{
		{Game: "snake", Difficulty: "easy", Score: 30},
		{Game: "slicer", Difficulty: "medium", Score: 20},
		{Game: "snake", Difficulty: "hard", Score: 50},
	} {
		if err := ta.store.Sessions().Create(s); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{"all", "", http.StatusOK, 3},
		{"by game", "?game=snake", http.StatusOK, 2},
		{"limited", "?limit=1", http.StatusOK, 1},
		{"unknown game", "?game=pong", http.StatusBadRequest, 0},
		{"bad limit", "?limit=-2", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ta.do(t, http.MethodGet, "/api/sessions"+tt.query, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			resp := decodeBody[listSessionsResponse](t, rec)
			if len(resp.Sessions) != tt.wantLen {
				t.Errorf("sessions = %d, want %d", len(resp.Sessions), tt.wantLen)
			}
		})
	}
}

func TestScoreHandler_Session(t *testing.T) {
	ta := newTestAPI(t)
	sess := &store.Session{Game: "flappy", Difficulty: "medium", Score: 7}
	ta.store.Sessions().Create(sess)

	rec := ta.do(t, http.MethodGet, "/api/sessions/"+sess.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[store.Session](t, rec); got.Score != 7 || got.Game != "flappy" {
		t.Errorf("session = %+v", got)
	}

	if rec := ta.do(t, http.MethodGet, "/api/sessions/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", rec.Code)
	}
}
