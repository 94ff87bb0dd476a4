package audit

import (
	"context"

	"github.com/estudio/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// Inserter is the persistence surface the sink writes through
type Inserter interface {
	Insert(ctx context.Context, entry *audit.Entry) error
}

// BestEffortSink records audit entries without ever failing the caller.
// A write error is logged and swallowed: the business operation already
// committed, and losing one audit row is preferable to surfacing an
// error for work that succeeded.
type BestEffortSink struct {
	repo   Inserter
	logger *zap.Logger
}

// NewBestEffortSink creates a new BestEffortSink
func NewBestEffortSink(repo Inserter, logger *zap.Logger) *BestEffortSink {
	return &BestEffortSink{
		repo:   repo,
		logger: logger.Named("audit"),
	}
}

// Record persists the entry, logging on failure instead of returning an error
func (s *BestEffortSink) Record(ctx context.Context, entry *audit.Entry) {
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err),
		)
	}
}

// Ensure BestEffortSink implements the domain sink
var _ audit.Sink = (*BestEffortSink)(nil)
