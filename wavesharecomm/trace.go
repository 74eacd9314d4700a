package wavesharecomm

import (
	"io"
	"log"

	"github.com/warthog618/modem/trace"
)

type tracedPort struct {
	io.ReadWriter
	io.Closer
}

// Trace wraps `port` so every raw read and write is logged to `logger`
// at DEBUG level. Closing the result closes `port`.
func Trace(port io.ReadWriteCloser, logger *log.Logger) io.ReadWriteCloser {
	return tracedPort{
		ReadWriter: trace.New(port,
			trace.WithLogger(logger),
			trace.WithReadFormat("[DEBUG] r: %q"),
			trace.WithWriteFormat("[DEBUG] w: %q")),
		Closer: port,
	}
}
