package store

import (
	"context"
	"encoding/json"
	"time"
)

// DocumentStore is the remote per-user routine document collection.
type DocumentStore interface {
	List(ctx context.Context, userID int) ([]json.RawMessage, error)
	Upsert(ctx context.Context, userID int, routineID string, doc json.RawMessage) error
	DeleteAll(ctx context.Context, userID int) error
}

// KeyValue is the local fallback blob store used while signed out.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// ReminderScheduler queues local reminder alerts. Schedule is fire-once;
// CancelAll drops every pending alert.
type ReminderScheduler interface {
	Schedule(id string, fireAt time.Time, title, body string)
	CancelAll()
}
