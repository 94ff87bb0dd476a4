package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// WithTx returns a context carrying the given transactional handle. Repositories
// created over the base connection will route their queries through it.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext extracts the transactional handle from the context, if any.
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok
}

// GormTransactionManager implements shared.TransactionManager over a GORM
// connection. The transaction is propagated through the context so every
// repository call inside fn joins the same unit of work. This is what ties
// the counter lock, the document insert and the drawer movements together:
// either all of them commit or none does.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Transaction runs fn inside a database transaction carried by the context.
// Nested calls join the enclosing transaction instead of opening a new one.
func (m *GormTransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

// conn resolves the handle a repository should use: the context's
// transaction when inside a unit of work, the base connection otherwise.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}
