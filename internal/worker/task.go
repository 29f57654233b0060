package worker

// Task represents one file to upload
type Task struct {
	// LocalPath is the file on disk.
	LocalPath string `json:"local_path"`
	// Key is the remote object name, always forward-slash separated.
	Key string `json:"key"`
	// Size is the file size in bytes at scan time.
	Size int64 `json:"size"`
}

// Result is the outcome of one task. Exactly one result is produced per
// dispatched task.
type Result struct {
	Task      Task
	Succeeded bool
	// Detail carries the failure reason when Succeeded is false.
	Detail string
}

// Config contains worker configuration
type Config struct {
	// ChunkSize is both the single-vs-chunked threshold (inclusive for
	// single) and the size of each chunk part.
	ChunkSize int64
	// DryRun skips all I/O and reports every task as succeeded.
	DryRun bool
}
