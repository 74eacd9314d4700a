package wavesharecomm

import (
	"bytes"
	"strings"
)

// Status is the final result code found in a reply.
type Status int

const (
	StatusNone Status = iota
	StatusOK
	StatusError
	StatusCMEError
	StatusCMSError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusCMEError:
		return "+CME ERROR"
	case StatusCMSError:
		return "+CMS ERROR"
	default:
		return "none"
	}
}

var (
	ResultOK    = []byte("OK")
	ResultError = []byte("ERROR")
)

// Response holds the raw bytes received during one exchange.
type Response []byte

// String returns the reply up to the first NUL byte, the way it would read
// as a C string.
func (r Response) String() string {
	if i := bytes.IndexByte(r, 0); i >= 0 {
		return string(r[:i])
	}
	return string(r)
}

// Lines splits the reply on CR/LF and drops empty lines.
func (r Response) Lines() []string {
	fields := strings.FieldsFunc(r.String(), func(c rune) bool {
		return c == '\r' || c == '\n'
	})
	lines := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			lines = append(lines, f)
		}
	}
	return lines
}

// Status reports the last final result code in the reply. Nothing in a
// reply has to be complete, so StatusNone is common after a short window.
func (r Response) Status() Status {
	lines := r.Lines()
	for i := len(lines) - 1; i >= 0; i-- {
		l := []byte(lines[i])
		switch {
		case bytes.Equal(l, ResultOK):
			return StatusOK
		case bytes.Equal(l, ResultError):
			return StatusError
		case bytes.HasPrefix(l, []byte("+CME ERROR")):
			return StatusCMEError
		case bytes.HasPrefix(l, []byte("+CMS ERROR")):
			return StatusCMSError
		}
	}
	return StatusNone
}

// OK is true if the last final result code is OK.
func (r Response) OK() bool {
	return r.Status() == StatusOK
}
