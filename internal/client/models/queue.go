package models

import "time"

// QueueStatus is the processing state of a queue entry.
type QueueStatus string

const (
	StatusPending   QueueStatus = "pending"
	StatusFailed    QueueStatus = "failed"
	StatusCompleted QueueStatus = "completed"
)

// QueueEntry is one durable mutation awaiting remote application.
type QueueEntry struct {
	ID          int64
	EntityType  EntityType
	EntityID    string
	Operation   Operation
	Payload     []byte
	Status      QueueStatus
	RetryCount  int
	LastError   string
	ErrorKind   SyncErrorKind
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Unprocessed reports whether the entry still waits for the remote side.
func (e *QueueEntry) Unprocessed() bool {
	return e.Status == StatusPending || e.Status == StatusFailed
}

// FailureSummary aggregates failed entries for status reporting.
type FailureSummary struct {
	Failed    int
	LastError string
}
