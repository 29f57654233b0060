package scan

import (
	"io/fs"
	"os"
	"path/filepath"

	"parupload/internal/worker"

	"go.uber.org/zap"
)

// Scanner produces the upload work list from a local directory
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a new directory scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan returns one task per regular file under dir, plus the total byte
// count. A missing or non-directory path is logged and yields an empty
// work list rather than an error.
func (s *Scanner) Scan(dir, prefix string, recursive bool) ([]worker.Task, int64) {
	root, err := filepath.Abs(dir)
	if err != nil {
		s.logger.Warn("Failed to resolve directory", zap.String("directory", dir), zap.Error(err))
		return nil, 0
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		s.logger.Warn("Directory does not exist or is not a directory", zap.String("directory", dir))
		return nil, 0
	}

	var tasks []worker.Task
	var totalSize int64

	add := func(path string, size int64) {
		key, err := ObjectKey(path, root, prefix)
		if err != nil {
			s.logger.Warn("Skipping file", zap.String("path", path), zap.Error(err))
			return
		}

		tasks = append(tasks, worker.Task{
			LocalPath: path,
			Key:       key,
			Size:      size,
		})
		totalSize += size
	}

	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				s.logger.Warn("Skipping file", zap.String("path", path), zap.Error(err))
				return nil
			}

			add(path, fi.Size())
			return nil
		})
		if err != nil {
			s.logger.Warn("Directory walk failed", zap.String("directory", dir), zap.Error(err))
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.logger.Warn("Failed to read directory", zap.String("directory", dir), zap.Error(err))
			return nil, 0
		}

		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}

			fi, err := entry.Info()
			if err != nil {
				s.logger.Warn("Skipping file", zap.String("path", entry.Name()), zap.Error(err))
				continue
			}

			add(filepath.Join(root, entry.Name()), fi.Size())
		}
	}

	s.logger.Info("Finished scanning directory",
		zap.String("directory", dir),
		zap.Int("files", len(tasks)),
		zap.Int64("total_size_bytes", totalSize),
	)

	return tasks, totalSize
}
