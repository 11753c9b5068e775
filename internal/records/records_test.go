package records

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gemini-guess/internal/database"
	"github.com/robalobadob/gemini-guess/internal/game"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertUser(t *testing.T, db *sql.DB, id, username string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, "x", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
}

func result(id string, guesses int, elapsed time.Duration, finished time.Time) Result {
	hist := make([]game.Entry, guesses)
	for i := range hist {
		hist[i] = game.Entry{Guess: i + 1, Hint: "h", CreatedAt: finished}
	}
	return Result{
		RoundID:    id,
		Secret:     guesses,
		History:    hist,
		StartedAt:  finished.Add(-elapsed),
		FinishedAt: finished,
	}
}

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("x", 10*3600)
	assert.Equal(t, "2026-03-01", DateKey(time.Date(2026, 3, 2, 5, 0, 0, 0, loc)))
}

func TestFromSnapshot(t *testing.T) {
	r := game.NewRound(game.HinterFunc(func(context.Context, int, int, []game.Entry) string { return "x" }),
		game.WithSecretSource(func() int { return 9 }))
	r.Start()

	_, err := FromSnapshot(r.Snapshot())
	require.Error(t, err)

	_, err = r.SubmitGuess(context.Background(), "9")
	require.NoError(t, err)
	res, err := FromSnapshot(r.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, r.ID(), res.RoundID)
	assert.Equal(t, 9, res.Secret)
	assert.Len(t, res.History, 1)
}

func TestInsertAndListByOwner(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	st := NewStore(db)
	insertUser(t, db, "u1", "alice")

	now := time.Now().UTC().Truncate(time.Second)
	r1 := result("r1", 3, 5*time.Second, now.Add(-time.Minute))
	r1.UserID = "u1"
	r2 := result("r2", 5, 9*time.Second, now)
	r2.UserID = "u1"
	require.NoError(t, st.Insert(ctx, r1))
	require.NoError(t, st.Insert(ctx, r2))
	require.NoError(t, st.Insert(ctx, r2)) // duplicate ignored

	got, err := st.ListByOwner(ctx, "u1", "", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, 5, got[0].Guesses)
	assert.Equal(t, int64(9000), got[0].ElapsedMs)
	assert.Len(t, got[0].History, 5)
	assert.Equal(t, "r1", got[1].ID)
}

func TestLeaderboardOrderingAndGuests(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	st := NewStore(db)
	insertUser(t, db, "u1", "alice")

	day := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	slow := result("slow", 4, 30*time.Second, day)
	slow.UserID = "u1"
	fast := result("fast", 4, 10*time.Second, day)
	fast.AnonymousID = "anon-1"
	best := result("best", 2, time.Minute, day)
	best.UserID = "u1"
	other := result("other", 1, time.Second, day.Add(24*time.Hour))
	other.UserID = "u1"
	for _, r := range []Result{slow, fast, best, other} {
		require.NoError(t, st.Insert(ctx, r))
	}

	rows, err := st.Leaderboard(ctx, "2026-05-04", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LBRow{Player: "alice", Guesses: 2, ElapsedMs: 60000}, rows[0])
	assert.Equal(t, LBRow{Player: "guest", Guesses: 4, ElapsedMs: 10000}, rows[1])
	assert.Equal(t, LBRow{Player: "alice", Guesses: 4, ElapsedMs: 30000}, rows[2])
}

func TestClaimAnonymous(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	st := NewStore(db)
	insertUser(t, db, "u1", "alice")

	r := result("g1", 3, time.Second, time.Now())
	r.AnonymousID = "anon-1"
	require.NoError(t, st.Insert(ctx, r))

	require.NoError(t, st.ClaimAnonymous(ctx, "anon-1", "u1"))
	mine, err := st.ListByOwner(ctx, "u1", "", 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	guest, err := st.ListByOwner(ctx, "", "anon-1", 0)
	require.NoError(t, err)
	assert.Empty(t, guest)

	require.NoError(t, st.ClaimAnonymous(ctx, "", "u1"))
}
