package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

// MinRetention is the shortest window a caller may archive with. Sessions
// active more recently than this are never moved, so archival cannot race
// an ongoing conversation.
const MinRetention = 24 * time.Hour

type Report struct {
	Archived int       `json:"archived"`
	Cutoff   time.Time `json:"cutoff"`
}

type Service struct {
	repo       core.ArchiveRepository
	defaultAge time.Duration
	now        func() time.Time
}

func NewService(repo core.ArchiveRepository, defaultAge time.Duration) *Service {
	return &Service{
		repo:       repo,
		defaultAge: defaultAge,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run archives sessions idle for longer than olderThan. Zero means the
// configured default.
func (s *Service) Run(ctx context.Context, olderThan time.Duration) (Report, error) {
	if olderThan == 0 {
		olderThan = s.defaultAge
	}
	if olderThan < MinRetention {
		return Report{}, fmt.Errorf("%w: %s is below %s", core.ErrRetentionTooShort, olderThan, MinRetention)
	}

	cutoff := s.now().Add(-olderThan)
	n, err := s.repo.Archive(ctx, cutoff)
	if err != nil {
		return Report{}, fmt.Errorf("archive sessions: %w", err)
	}

	log.FromCtx(ctx).Info().Int("archived", n).Time("cutoff", cutoff).Msg("archived idle sessions")
	return Report{Archived: n, Cutoff: cutoff}, nil
}
