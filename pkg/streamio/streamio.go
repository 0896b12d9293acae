package streamio

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// ErrStop may be returned by an emit callback to end scanning early without
// reporting an error to the caller.
var ErrStop = errors.New("streamio: stop")

// ScanLines reads r line by line and feeds each complete line to emit with
// the newline and any trailing carriage return stripped. A partial line at
// the end of the stream is still delivered, so nothing buffered is lost when
// the peer closes mid-line.
func ScanLines(r io.Reader, emit func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), maxLineSize)

	for scanner.Scan() {
		if err := emit(scanner.Text()); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}

// SSEData extracts the payload of a server-sent-events data line. Blank
// lines, comment lines (leading colon) and non-data fields report ok=false.
func SSEData(line string) (string, bool) {
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	data := strings.TrimPrefix(line, "data:")
	return strings.TrimPrefix(data, " "), true
}
