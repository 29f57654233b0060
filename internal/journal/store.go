package journal

import (
	"time"
)

// Status is the final state of one uploaded file
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is one file's outcome as written to the journal
type Record struct {
	Key       string    `json:"key"`
	LocalPath string    `json:"local_path"`
	Size      int64     `json:"size"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists per-file outcomes for post-run inspection. The journal
// is write-only during a run; it never feeds back into scheduling.
type Store interface {
	SaveRecord(record *Record) error
	GetRecord(key string) (*Record, error)
	ListFailed() ([]*Record, error)

	Close() error
}
