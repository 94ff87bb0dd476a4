package audit

import (
	"context"
	"errors"
	"testing"

	domainaudit "github.com/estudio/backend/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeInserter struct {
	inserted []*domainaudit.Entry
	err      error
}

func (f *fakeInserter) Insert(_ context.Context, entry *domainaudit.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, entry)
	return nil
}

func TestBestEffortSink_Record(t *testing.T) {
	t.Run("persists the entry", func(t *testing.T) {
		repo := &fakeInserter{}
		sink := NewBestEffortSink(repo, zap.NewNop())

		entry := domainaudit.NewEntry(nil, domainaudit.ActionDrawerClosed, "drawer", nil, nil)
		sink.Record(context.Background(), entry)

		assert.Len(t, repo.inserted, 1)
	})

	t.Run("swallows write failures", func(t *testing.T) {
		repo := &fakeInserter{err: errors.New("connection refused")}
		sink := NewBestEffortSink(repo, zap.NewNop())

		entry := domainaudit.NewEntry(nil, domainaudit.ActionReceiptVoided, "receipt", nil, nil)

		assert.NotPanics(t, func() {
			sink.Record(context.Background(), entry)
		})
	})
}
