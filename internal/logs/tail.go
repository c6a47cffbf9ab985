package logs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Tail reads a task log incrementally from a fixed starting point.
type Tail struct {
	path string
	file *os.File
}

// OpenTail opens the log of a task positioned at its start.
func OpenTail(root string, id int) (*Tail, error) {
	file, err := Open(root, id)
	if err != nil {
		return nil, err
	}
	return &Tail{path: Path(root, id), file: file}, nil
}

// Path returns the underlying file path.
func (t *Tail) Path() string {
	return t.path
}

// Window moves the read position onto the trailing window when lines is set.
// It must be called before the first read.
func (t *Tail) Window(lines *int) (bool, error) {
	if lines == nil {
		return true, nil
	}
	return SeekLastLines(t.file, *lines)
}

// Exists reports whether the log file is still present on disk.
func (t *Tail) Exists() bool {
	_, err := os.Stat(t.path)
	return !errors.Is(err, fs.ErrNotExist)
}

// ReadNew copies everything appended since the previous read into w. A zero
// byte read is normal while the task is quiet.
func (t *Tail) ReadNew(w io.Writer) (int64, error) {
	n, err := io.Copy(w, t.file)
	if err != nil {
		return n, fmt.Errorf("read log file: %w", err)
	}
	return n, nil
}

// Close releases the file handle.
func (t *Tail) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	return t.file.Close()
}
