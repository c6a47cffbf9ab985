package logs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
)

// ErrDecode marks failures to decode a compressed log payload.
var ErrDecode = errors.New("decompress log output")

// Compress packs r into a snappy frame stream.
func Compress(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("compress log output: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress log output: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressWindow compresses a task log or its trailing window and reports
// whether the payload holds the complete log.
func CompressWindow(root string, id int, lines *int) ([]byte, bool, error) {
	file, err := Open(root, id)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	complete := true
	if lines != nil {
		complete, err = SeekLastLines(file, *lines)
		if err != nil {
			return nil, false, err
		}
	}
	payload, err := Compress(file)
	if err != nil {
		return nil, false, err
	}
	return payload, complete, nil
}

type decodeReader struct {
	r io.Reader
}

func (d decodeReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return n, err
}

// NewDecoder returns a reader over the decoded payload. Read errors other
// than io.EOF wrap ErrDecode.
func NewDecoder(payload []byte) io.Reader {
	if len(payload) == 0 {
		return strings.NewReader("")
	}
	return decodeReader{r: snappy.NewReader(bytes.NewReader(payload))}
}

// Decompress decodes a whole payload. An empty payload decodes to an empty
// string.
func Decompress(payload []byte) (string, error) {
	data, err := io.ReadAll(NewDecoder(payload))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeFailure renders the placeholder shown instead of an undecodable log.
func DecodeFailure(err error) string {
	return fmt.Sprintf("(hopper error) Failed to decompress remote log output: %v", err)
}
