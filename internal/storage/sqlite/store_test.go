package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "sazed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRepo_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Sessions()

	require.NoError(t, repo.EnsureSession(ctx, "s1"))
	first, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, repo.EnsureSession(ctx, "s1"))
	second, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 0, second.MessageCount)
	assert.Nil(t, second.ProcessedAt)
}

func TestSessionRepo_GetMissing(t *testing.T) {
	_, err := newTestStore(t).Sessions().GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionRepo_MessagesRoundTripInOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Sessions()
	require.NoError(t, repo.EnsureSession(ctx, "s1"))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs := []core.Message{
		{Role: core.RoleUser, Content: core.PlainText("what's on my calendar?"), Timestamp: base},
		{Role: core.RoleAssistant, Content: core.Blocks(
			core.TextBlock("Let me check."),
			core.ToolUseBlock("tu_1", "get_events", map[string]any{"days": float64(1)}),
		), Timestamp: base.Add(time.Millisecond)},
		{Role: core.RoleUser, Content: core.Blocks(core.ToolResultBlock("tu_1", "[]")), Timestamp: base.Add(2 * time.Millisecond)},
		// same instant as the previous one; insertion order must win
		{Role: core.RoleAssistant, Content: core.Blocks(core.TextBlock("Nothing scheduled.")), Timestamp: base.Add(2 * time.Millisecond)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.AppendMessage(ctx, "s1", m))
	}
	require.NoError(t, repo.Touch(ctx, "s1"))

	got, err := repo.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.True(t, got[0].Content.IsPlain())
	assert.Equal(t, "what's on my calendar?", got[0].Content.Text())
	uses := got[1].Content.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "get_events", uses[0].Name)
	assert.Equal(t, float64(1), uses[0].Input["days"])
	assert.Equal(t, "tu_1", got[2].Content.ToolResults()[0].ToolUseID)
	text, _ := got[3].Content.FirstText()
	assert.Equal(t, "Nothing scheduled.", text)
	assert.NoError(t, core.ValidatePairing(got, false))

	s, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, s.MessageCount)
}

func TestSessionRepo_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Sessions()
	require.NoError(t, repo.EnsureSession(ctx, "s1"))

	ref := "file-123"
	require.NoError(t, repo.MarkProcessed(ctx, "s1", &ref))
	s, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.ProcessedAt)
	require.NotNil(t, s.SummaryRef)
	assert.Equal(t, "file-123", *s.SummaryRef)

	// a nil ref keeps the previous one
	require.NoError(t, repo.MarkProcessed(ctx, "s1", nil))
	s, err = repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "file-123", *s.SummaryRef)

	assert.ErrorIs(t, repo.MarkProcessed(ctx, "missing", nil), core.ErrSessionNotFound)
}

func TestSessionRepo_ListAndIdle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.sessions

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	for _, id := range []string{"old", "new", "empty"} {
		require.NoError(t, repo.EnsureSession(ctx, id))
	}
	require.NoError(t, repo.AppendMessage(ctx, "old", core.Message{Role: core.RoleUser, Content: core.PlainText("hi")}))
	require.NoError(t, repo.Touch(ctx, "old"))

	clock = clock.Add(time.Hour)
	require.NoError(t, repo.AppendMessage(ctx, "new", core.Message{Role: core.RoleUser, Content: core.PlainText("hey")}))
	require.NoError(t, repo.Touch(ctx, "new"))

	list, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)

	clock = clock.Add(30 * time.Minute)
	idle, err := repo.IdleUnprocessed(ctx, time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, "old", idle[0].ID)

	require.NoError(t, repo.MarkProcessed(ctx, "old", nil))
	idle, err = repo.IdleUnprocessed(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Empty(t, idle)
}

func TestMemoryRepo_UpsertConfidenceGate(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Memory()

	first, err := repo.Upsert(ctx, core.FactInput{
		FactType: core.FactPreference, Key: "coffee", Value: "black", Confidence: 0.7, Source: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "black", first.Value)

	lower, err := repo.Upsert(ctx, core.FactInput{
		FactType: core.FactPreference, Key: "coffee", Value: "latte", Confidence: 0.5, Source: "s2",
	})
	require.NoError(t, err)
	assert.Equal(t, "black", lower.Value)
	assert.Equal(t, 0.7, lower.Confidence)
	assert.Equal(t, "s1", lower.Source)
	assert.Equal(t, first.ID, lower.ID)

	equal, err := repo.Upsert(ctx, core.FactInput{
		FactType: core.FactPreference, Key: "coffee", Value: "espresso", Confidence: 0.7, Source: "s3",
	})
	require.NoError(t, err)
	assert.Equal(t, "espresso", equal.Value)
	assert.Equal(t, first.ID, equal.ID)

	facts, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "espresso", facts[0].Value)
}

func TestMemoryRepo_LoadOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.memory

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	a, err := repo.Upsert(ctx, core.FactInput{FactType: core.FactPersonal, Key: "name", Value: "Sam", Confidence: 1, Source: core.SourceAPI})
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = repo.Upsert(ctx, core.FactInput{FactType: core.FactProject, Key: "thesis", Value: "robotics", Confidence: 1, Source: core.SourceAPI})
	require.NoError(t, err)

	facts, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "thesis", facts[0].Key)

	ok, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArchiveRepo_MovesOnlyStaleSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sessions := store.sessions

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }

	require.NoError(t, sessions.EnsureSession(ctx, "stale"))
	require.NoError(t, sessions.AppendMessage(ctx, "stale", core.Message{Role: core.RoleUser, Content: core.PlainText("old news")}))
	require.NoError(t, sessions.Touch(ctx, "stale"))

	clock = clock.AddDate(0, 0, 40)
	require.NoError(t, sessions.EnsureSession(ctx, "fresh"))
	require.NoError(t, sessions.AppendMessage(ctx, "fresh", core.Message{Role: core.RoleUser, Content: core.PlainText("today")}))
	require.NoError(t, sessions.Touch(ctx, "fresh"))

	n, err := store.Archive().Archive(ctx, clock.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = sessions.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	_, err = sessions.GetSession(ctx, "fresh")
	assert.NoError(t, err)

	var archivedMsgs int
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages_archive WHERE session_id = 'stale'`).Scan(&archivedMsgs))
	assert.Equal(t, 1, archivedMsgs)

	var liveMsgs int
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = 'stale'`).Scan(&liveMsgs))
	assert.Equal(t, 0, liveMsgs)
}
