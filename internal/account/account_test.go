package account

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/gemini-guess/internal/database"
)

func openTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "acct.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), db
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		user, pass string
		ok         bool
	}{
		{"alice", "password1", true},
		{"al", "password1", false},
		{"alice!", "password1", false},
		{"alice", "short", false},
		{"under_score9", "longenough", true},
	}
	for _, tc := range cases {
		err := ValidateSignup(tc.user, tc.pass)
		if tc.ok {
			assert.NoError(t, err, tc.user)
		} else {
			assert.Error(t, err, tc.user)
		}
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	u, err := st.Create(ctx, "  Alice ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	assert.Len(t, u.ID, 22)

	_, err = st.Create(ctx, "alice", "password2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	got, err := st.Authenticate(ctx, "ALICE", "password1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = st.Authenticate(ctx, "alice", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = st.Authenticate(ctx, "nobody", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	byID, err := st.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.CreatedAt, byID.CreatedAt)

	_, err = st.FindByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st, db := openTestStore(t)
	u, err := st.Create(ctx, "bob_1", "password1")
	require.NoError(t, err)

	empty, err := st.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Wins)
	assert.Nil(t, empty.BestGuesses)

	now := time.Now().UTC().Format(time.RFC3339)
	for i, g := range []int{6, 3} {
		_, err := db.Exec(`INSERT INTO rounds (id, user_id, secret, guesses, elapsed_ms, history, started_at, finished_at, date)
		                   VALUES (?,?,?,?,?,?,?,?,?)`, []string{"a", "b"}[i], u.ID, 10, g, 1000, "[]", now, now, "2026-01-01")
		require.NoError(t, err)
	}

	s, err := st.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 9, s.TotalGuesses)
	require.NotNil(t, s.BestGuesses)
	assert.Equal(t, 3, *s.BestGuesses)
	assert.InDelta(t, 4.5, s.AvgGuesses, 1e-9)
}
