package archive

import (
	"context"
	"testing"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	cutoff time.Time
	calls  int
}

func (r *fakeRepo) Archive(ctx context.Context, cutoff time.Time) (int, error) {
	r.calls++
	r.cutoff = cutoff
	return 3, nil
}

func TestRun(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	s := NewService(repo, 30*24*time.Hour)
	s.now = func() time.Time { return now }

	rep, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Archived)
	assert.Equal(t, now.Add(-30*24*time.Hour), repo.cutoff)

	rep, err = s.Run(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-48*time.Hour), rep.Cutoff)
}

func TestRun_RejectsShortRetention(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, 30*24*time.Hour)

	_, err := s.Run(context.Background(), time.Hour)
	assert.ErrorIs(t, err, core.ErrRetentionTooShort)
	assert.Zero(t, repo.calls)
}
