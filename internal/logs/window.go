package logs

import (
	"fmt"
	"io"
)

const seekBlockSize = 16 * 1024

// SeekLastLines positions rs so that only the trailing n lines remain unread.
// A line break at the very end does not open another line, while an
// unterminated final fragment counts as a line. It reports true when the
// resource holds at most n lines and nothing was skipped.
//
// The resource is scanned backwards in fixed blocks from its end, so memory
// use does not depend on the file size.
func SeekLastLines(rs io.ReadSeeker, n int) (bool, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return false, fmt.Errorf("seek log end: %w", err)
	}
	if size == 0 {
		return true, nil
	}
	if n <= 0 {
		return false, nil
	}

	buf := make([]byte, seekBlockSize)
	pos := size
	found := 0
	for pos > 0 {
		chunk := int64(len(buf))
		if pos < chunk {
			chunk = pos
		}
		pos -= chunk
		if _, err := rs.Seek(pos, io.SeekStart); err != nil {
			return false, fmt.Errorf("seek log block: %w", err)
		}
		if _, err := io.ReadFull(rs, buf[:chunk]); err != nil {
			return false, fmt.Errorf("read log block: %w", err)
		}
		for i := chunk - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			offset := pos + i
			if offset == size-1 {
				continue
			}
			found++
			if found == n {
				if _, err := rs.Seek(offset+1, io.SeekStart); err != nil {
					return false, fmt.Errorf("seek log window: %w", err)
				}
				return false, nil
			}
		}
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("rewind log: %w", err)
	}
	return true, nil
}

// ReadLastLines returns the trailing n lines of rs and whether they are the
// whole content.
func ReadLastLines(rs io.ReadSeeker, n int) (string, bool, error) {
	complete, err := SeekLastLines(rs, n)
	if err != nil {
		return "", false, err
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return "", false, fmt.Errorf("read log window: %w", err)
	}
	return string(data), complete, nil
}

// ReadWindow reads a task log completely when lines is nil, otherwise only
// its trailing window.
func ReadWindow(root string, id int, lines *int) (string, bool, error) {
	file, err := Open(root, id)
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	if lines == nil {
		data, err := io.ReadAll(file)
		if err != nil {
			return "", false, fmt.Errorf("read log file of task %d: %w", id, err)
		}
		return string(data), true, nil
	}
	return ReadLastLines(file, *lines)
}
