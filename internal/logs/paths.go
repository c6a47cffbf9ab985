package logs

import (
	"fmt"
	"os"
	"path/filepath"
)

const taskLogDir = "task_logs"

// Dir returns the directory holding task logs below root.
func Dir(root string) string {
	return filepath.Join(root, taskLogDir)
}

// Path returns the log file path of a task.
func Path(root string, id int) string {
	return filepath.Join(Dir(root), fmt.Sprintf("%d.log", id))
}

// Open opens the log file of a task for reading.
func Open(root string, id int) (*os.File, error) {
	file, err := os.Open(Path(root, id))
	if err != nil {
		return nil, fmt.Errorf("open log file of task %d: %w", id, err)
	}
	return file, nil
}
