package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/analysis"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/game"
)

type fakeArchive struct {
	records   []domain.GameRecord
	lastLimit int
	err       error
}

func (a *fakeArchive) GetGame(_ context.Context, id string) (domain.GameRecord, error) {
	for _, r := range a.records {
		if r.GameID == id {
			return r, nil
		}
	}
	return domain.GameRecord{}, domain.ErrGameNotFound
}

func (a *fakeArchive) ListGames(_ context.Context, limit int) ([]domain.GameRecord, error) {
	a.lastLimit = limit
	if a.err != nil {
		return nil, a.err
	}
	if limit < len(a.records) {
		return a.records[:limit], nil
	}
	return a.records, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	router   *gin.Engine
	sessions *game.SessionManager
	archive  *fakeArchive
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := bot.NewEngine(bot.DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	sessions, err := game.NewSessionManager(engine, game.DepthSchedule{Initial: 2, EveryTurns: 5, Max: 3}, 0, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	finished := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	archive := &fakeArchive{records: []domain.GameRecord{
		{GameID: "g1", HumanPlayer: domain.Player2, Difficulty: "hard", Moves: []int{0, 6, 0, 6, 0, 6, 0},
			Status: domain.FirstPlayerWins, Winner: domain.Player1, Reason: domain.ReasonConnectFour,
			CreatedAt: finished.Add(-time.Minute), FinishedAt: finished},
		{GameID: "g2", HumanPlayer: domain.Player1, Difficulty: "easy", Moves: []int{3},
			Winner: domain.Player2, Reason: domain.ReasonAbandoned,
			CreatedAt: finished.Add(-time.Hour), FinishedAt: finished.Add(-time.Hour)},
	}}

	router := NewRouter(Handlers{
		Analysis: NewAnalysisHandler(analysis.NewService(engine, nil, 3, 8, 0, zerolog.Nop())),
		History:  NewHistoryHandler(archive),
		Games:    NewGamesHandler(sessions),
		Health:   NewHealthHandler(nil),
	}, nil, zerolog.Nop())

	return &testServer{router: router, sessions: sessions, archive: archive}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/analyze", `{"moves":"060605","depth":1}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	res := decode[map[string]any](t, body)
	if res["move"] != float64(0) || res["cached"] != false || res["depth"] != float64(1) {
		t.Fatalf("response = %v", res)
	}
	if _, ok := res["elapsedMs"]; !ok {
		t.Fatalf("response has no elapsedMs: %v", res)
	}
	if res["score"] != float64(bot.WinOffset+bot.WinBase-3) {
		t.Fatalf("score = %v", res["score"])
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name, body string
		want       int
	}{
		{"bad json", `{"moves":`, http.StatusBadRequest},
		{"bad column", `{"moves":"07"}`, http.StatusBadRequest},
		{"full column", `{"moves":"0000000"}`, http.StatusBadRequest},
		{"too deep", `{"moves":"3","depth":9}`, http.StatusBadRequest},
		{"bad strategy", `{"moves":"3","strategy":"mcts"}`, http.StatusBadRequest},
		{"finished", `{"moves":"0606060"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		code, body := s.do(t, http.MethodPost, "/api/analyze", tt.body)
		if code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, code, tt.want, body)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/status", `{"moves":"0606060"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	st := decode[analysis.Status](t, body)
	if st.Status != "first_player_wins" || st.Ply != 7 || len(st.Board) != domain.Rows {
		t.Fatalf("status = %+v", st)
	}
}

func TestGamesEndpoint(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.sessions.Start(context.Background(), false, bot.Easy); err != nil {
		t.Fatalf("Start: %v", err)
	}

	code, body := s.do(t, http.MethodGet, "/api/games", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	games := decode[[]liveGameResponse](t, body)
	if len(games) != 1 || games[0].Difficulty != "easy" || games[0].HumanPlayer != 1 {
		t.Fatalf("games = %+v", games)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/history?limit=1", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	items := decode[[]historyItem](t, body)
	if len(items) != 1 || items[0].ID != "g1" || items[0].Result != "loss" || items[0].MovesCount != 7 {
		t.Fatalf("history = %+v", items)
	}

	if s.do(t, http.MethodGet, "/api/history?limit=500", ""); s.archive.lastLimit != maxHistoryLimit {
		t.Fatalf("limit = %d, want %d", s.archive.lastLimit, maxHistoryLimit)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/history?limit=abc", ""); code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", code)
	}

	code, body = s.do(t, http.MethodGet, "/api/history/g1", "")
	if code != http.StatusOK {
		t.Fatalf("details status = %d", code)
	}
	details := decode[map[string]any](t, body)
	if details["status"] != "first_player_wins" || details["gameId"] != "g1" {
		t.Fatalf("details = %v", details)
	}

	if code, _ := s.do(t, http.MethodGet, "/api/history/nope", ""); code != http.StatusNotFound {
		t.Fatalf("missing game status = %d", code)
	}

	s.archive.err = errors.New("connection reset")
	code, body = s.do(t, http.MethodGet, "/api/history", "")
	if code != http.StatusInternalServerError || bytes.Contains(body, []byte("connection reset")) {
		t.Fatalf("archive failure = %d %s", code, body)
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tt := range []struct {
		pinger Pinger
		want   int
	}{
		{nil, http.StatusOK},
		{fakePinger{}, http.StatusOK},
		{fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	} {
		r := gin.New()
		r.GET("/healthz", NewHealthHandler(tt.pinger).Healthz)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Code != tt.want {
			t.Errorf("pinger %v: status = %d, want %d", tt.pinger, w.Code, tt.want)
		}
	}
}
