package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
)

type fakeRepo struct {
	mu      sync.Mutex
	records []domain.GameRecord
}

func (r *fakeRepo) SaveGame(_ context.Context, record domain.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRepo) saved() []domain.GameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GameRecord(nil), r.records...)
}

func newManager(t *testing.T, schedule DepthSchedule, timeout time.Duration, repo GameRepository) *SessionManager {
	t.Helper()
	engine, err := bot.NewEngine(bot.DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	sm, err := NewSessionManager(engine, schedule, timeout, repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

var shallow = DepthSchedule{Initial: 2, EveryTurns: 5, Max: 3}

// firstOpenColumn picks the lowest-numbered column that still has room.
func firstOpenColumn(t *testing.T, sm *SessionManager, gameID string) int {
	t.Helper()
	snap, err := sm.Snapshot(gameID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	for col := 0; col < domain.Columns; col++ {
		if snap.Board[0][col] == 0 {
			return col
		}
	}
	t.Fatalf("board is full")
	return -1
}

func TestStartHumanFirst(t *testing.T) {
	sm := newManager(t, shallow, 0, nil)
	snap, upd, err := sm.Start(context.Background(), false, bot.Easy)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if upd.Engine != nil {
		t.Fatalf("engine moved first: %+v", upd.Engine)
	}
	if snap.Human != domain.Player1 || snap.Moves != "" || snap.Status != domain.InProgress {
		t.Fatalf("snapshot = %+v", snap)
	}
	if live := sm.Live(); len(live) != 1 || live[0].GameID != snap.GameID {
		t.Fatalf("Live = %+v", live)
	}
}

func TestStartEngineFirst(t *testing.T) {
	sm := newManager(t, shallow, 0, nil)
	snap, upd, err := sm.Start(context.Background(), true, bot.Medium)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if upd.Engine == nil {
		t.Fatalf("engine did not open the game")
	}
	if upd.Engine.Player != domain.Player1 || upd.Engine.Row != 0 {
		t.Fatalf("engine move = %+v", upd.Engine)
	}
	if upd.Engine.Depth != bot.MediumDepth {
		t.Fatalf("depth = %d, want %d", upd.Engine.Depth, bot.MediumDepth)
	}
	if snap.Human != domain.Player2 || len(snap.Moves) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, _, err := sm.Start(context.Background(), false, "grandmaster"); err == nil {
		t.Fatalf("Start accepted an unknown difficulty")
	}
}

func TestPlayAnswersWithEngineMove(t *testing.T) {
	sm := newManager(t, shallow, 0, nil)
	snap, _, err := sm.Start(context.Background(), false, bot.Medium)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	upd, err := sm.Play(context.Background(), snap.GameID, 3)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if upd.Human == nil || upd.Human.Column != 3 || upd.Human.Row != 0 || upd.Human.Player != domain.Player1 {
		t.Fatalf("human move = %+v", upd.Human)
	}
	if upd.Engine == nil || upd.Engine.Player != domain.Player2 {
		t.Fatalf("engine move = %+v", upd.Engine)
	}
	if upd.Board[domain.Rows-1][3] != int(domain.Player1) {
		t.Fatalf("bottom row = %v", upd.Board[domain.Rows-1])
	}

	after, _ := sm.Snapshot(snap.GameID)
	if len(after.Moves) != 2 {
		t.Fatalf("moves = %q, want two", after.Moves)
	}
}

func TestPlayErrors(t *testing.T) {
	sm := newManager(t, shallow, 0, nil)
	ctx := context.Background()

	if _, err := sm.Play(ctx, "missing", 3); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown game: err = %v", err)
	}

	snap, _, err := sm.Start(ctx, false, bot.Easy)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := sm.Play(ctx, snap.GameID, 9); !errors.Is(err, domain.ErrInvalidColumn) {
		t.Fatalf("column 9: err = %v", err)
	}
}

func TestInterruptedMachineTurn(t *testing.T) {
	sm := newManager(t, DepthSchedule{Initial: 8, Max: 8}, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, _, err := sm.Start(ctx, true, bot.Hard)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Start err = %v, want context.Canceled", err)
	}

	if _, err := sm.Play(context.Background(), snap.GameID, 3); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Play err = %v, want %v", err, ErrNotYourTurn)
	}

	upd, err := sm.Continue(context.Background(), snap.GameID)
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if upd.Engine == nil || upd.Engine.Depth != 8 {
		t.Fatalf("continued move = %+v", upd.Engine)
	}

	// nothing left to continue
	if upd, err = sm.Continue(context.Background(), snap.GameID); err != nil || upd.Engine != nil {
		t.Fatalf("second Continue = %+v, %v", upd.Engine, err)
	}
}

func TestTimeoutFallsBackToImmediateMove(t *testing.T) {
	sm := newManager(t, DepthSchedule{Initial: 8, Max: 8}, time.Nanosecond, nil)
	_, upd, err := sm.Start(context.Background(), true, bot.Hard)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if upd.Engine == nil {
		t.Fatalf("no engine move after timeout")
	}
}

func TestScheduleEscalatesPerSession(t *testing.T) {
	sm := newManager(t, DepthSchedule{Initial: 1, EveryTurns: 2, Max: 2}, 0, nil)
	ctx := context.Background()

	snap, upd, err := sm.Start(ctx, true, bot.Hard)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	depths := []int{upd.Engine.Depth}
	for len(depths) < 3 {
		upd, err := sm.Play(ctx, snap.GameID, firstOpenColumn(t, sm, snap.GameID))
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
		depths = append(depths, upd.Engine.Depth)
	}

	want := []int{1, 2, 2}
	for i := range want {
		if depths[i] != want[i] {
			t.Fatalf("depths = %v, want %v", depths, want)
		}
	}
}

func TestFinishedGameIsArchivedOnce(t *testing.T) {
	repo := &fakeRepo{}
	sm := newManager(t, shallow, 0, repo)
	ctx := context.Background()

	snap, _, err := sm.Start(ctx, false, bot.Medium)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var last Update
	for i := 0; i < domain.Rows*domain.Columns && !last.Status.IsTerminal(); i++ {
		last, err = sm.Play(ctx, snap.GameID, firstOpenColumn(t, sm, snap.GameID))
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
	}
	if !last.Status.IsTerminal() {
		t.Fatalf("game never finished")
	}

	if _, err := sm.Play(ctx, snap.GameID, 0); !errors.Is(err, domain.ErrGameFinished) {
		t.Fatalf("Play after finish: err = %v", err)
	}
	if err := sm.Abandon(snap.GameID); !errors.Is(err, domain.ErrGameFinished) {
		t.Fatalf("Abandon after finish: err = %v", err)
	}
	if live := sm.Live(); len(live) != 0 {
		t.Fatalf("finished game still live: %+v", live)
	}

	sm.Wait()
	saved := repo.saved()
	if len(saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(saved))
	}
	rec := saved[0]
	if rec.GameID != snap.GameID || rec.Status != last.Status || rec.Winner != last.Status.Winner() {
		t.Fatalf("record = %+v, final status %v", rec, last.Status)
	}
	if rec.Reason != domain.ReasonConnectFour && rec.Reason != domain.ReasonDraw {
		t.Fatalf("reason = %q", rec.Reason)
	}
	final, _ := sm.Snapshot(snap.GameID)
	if domain.FormatMoves(rec.Moves) != final.Moves {
		t.Fatalf("record moves %v, session moves %q", rec.Moves, final.Moves)
	}
}

func TestAbandonArchivesOnce(t *testing.T) {
	repo := &fakeRepo{}
	sm := newManager(t, shallow, 0, repo)
	ctx := context.Background()

	snap, _, err := sm.Start(ctx, false, bot.Easy)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := sm.Play(ctx, snap.GameID, 3); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := sm.Abandon(snap.GameID); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if err := sm.Abandon(snap.GameID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second Abandon: err = %v", err)
	}

	sm.Wait()
	saved := repo.saved()
	if len(saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(saved))
	}
	if saved[0].Reason != domain.ReasonAbandoned || saved[0].Winner != domain.Player2 || saved[0].HumanWon() {
		t.Fatalf("record = %+v", saved[0])
	}
	if len(saved[0].Moves) != 2 {
		t.Fatalf("moves = %v, want two", saved[0].Moves)
	}
}

func TestEvictIdle(t *testing.T) {
	repo := &fakeRepo{}
	sm := newManager(t, shallow, 0, repo)
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := t0
	sm.now = func() time.Time { return clock }

	idle, _, err := sm.Start(ctx, false, bot.Easy)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	active, _, err := sm.Start(ctx, false, bot.Easy)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock = t0.Add(20 * time.Minute)
	if _, err := sm.Play(ctx, active.GameID, 3); err != nil {
		t.Fatalf("Play: %v", err)
	}

	clock = t0.Add(40 * time.Minute)
	if n := sm.EvictIdle(30 * time.Minute); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, err := sm.Snapshot(idle.GameID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session still present: %v", err)
	}
	if _, err := sm.Snapshot(active.GameID); err != nil {
		t.Fatalf("active session evicted: %v", err)
	}

	sm.Wait()
	saved := repo.saved()
	if len(saved) != 1 || saved[0].GameID != idle.GameID || saved[0].Reason != domain.ReasonIdle {
		t.Fatalf("saved = %+v", saved)
	}
	if saved[0].DurationSeconds != 40*60 {
		t.Fatalf("duration = %d, want %d", saved[0].DurationSeconds, 40*60)
	}
}
