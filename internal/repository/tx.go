package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxManager opens a structured transaction scope. fn's error, or a panic,
// rolls the transaction back; a nil return commits it.
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return m.db.WithContext(ctx).Transaction(fn, opts...)
}

// ReadSnapshot is the option set for read-only queries that must see one
// consistent snapshot across several statements.
func ReadSnapshot() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

// conn picks the transaction when one is in flight and falls back to the pool.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
