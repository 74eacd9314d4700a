package wavesharecomm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/edwingeng/deque/v2"
)

// DefaultBufferSize is the reply buffer Send allocates when none is configured.
const DefaultBufferSize = 1024

const (
	readChunkSize = 256
	eofBackoff    = 10 * time.Millisecond
)

var (
	// ErrClosed is returned by exchanges on a closed Transport.
	ErrClosed = errors.New("transport closed")
	// ErrNoBuffer is returned by Exchange when given an empty buffer.
	ErrNoBuffer = errors.New("reply buffer has no room")
)

// Transport writes commands to the modem and collects whatever it sends
// back within a fixed window.
//
// A single reader goroutine owns the read side of the port and queues the
// bytes it receives. Exchanges are serialised.
type Transport struct {
	port    io.ReadWriter
	log     *log.Logger
	bufSize int

	xlock sync.Mutex

	lock    sync.Mutex
	pending *deque.Deque[[]byte]
	readErr error

	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewTransport starts reading from `port`. `bufSize` is the reply buffer
// used by Send, DefaultBufferSize if not positive.
func NewTransport(port io.ReadWriter, bufSize int, logger *log.Logger) *Transport {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	t := &Transport{
		port:    port,
		log:     logger,
		bufSize: bufSize,
		pending: deque.NewDeque[[]byte](),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go t.goReadPort()
	return t
}

/*
[Goroutine]

Read from the port until it fails or the transport is closed,
queueing every chunk onto `pending`.

io.EOF is not a failure: the serial driver reports it when the line goes quiet.
*/
func (t *Transport) goReadPort() {
	buf := make([]byte, readChunkSize)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.lock.Lock()
			t.pending.PushBack(chunk)
			t.lock.Unlock()
			t.signal()
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			select {
			case <-t.done:
				return
			case <-time.After(eofBackoff):
			}
		default:
			select {
			case <-t.done:
			default:
				t.log.Printf("[ERROR] error reading serial: %v\n", err)
			}
			t.lock.Lock()
			t.readErr = err
			t.lock.Unlock()
			t.signal()
			return
		}
	}
}

func (t *Transport) signal() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// discardPending drops input that arrived before the current exchange and
// returns how many bytes were dropped.
func (t *Transport) discardPending() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	n := 0
	for t.pending.Len() > 0 {
		n += len(t.pending.PopFront())
	}
	return n
}

/*
[Blocking]

Run the command `cmd` on the modem, copying the reply into `buf`.

Any stale input is discarded first, then `cmd` is written with a line ending.
The call returns once len(buf)-1 bytes have arrived or `timeout` has elapsed,
whichever comes first, with a NUL written after the received bytes.

Only a failed write or read is an error: a short, truncated or empty reply is not.
Bytes beyond the buffer stay queued until the next exchange discards them.
*/
func (t *Transport) Exchange(cmd string, buf []byte, timeout time.Duration) (int, error) {
	if len(buf) == 0 {
		return 0, ErrNoBuffer
	}

	t.xlock.Lock()
	defer t.xlock.Unlock()

	select {
	case <-t.done:
		return 0, ErrClosed
	default:
	}

	if n := t.discardPending(); n > 0 {
		t.log.Printf("[DEBUG] Discarded %d stale bytes before %s\n", n, cmd)
	}

	if err := WriteCommand(t.port, cmd, t.log); err != nil {
		t.log.Printf("[ERROR] Serial write failed for %s: %v\n", cmd, err)
		buf[0] = 0
		return 0, fmt.Errorf("error writing command to port: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := t.readInto(ctx, buf[:len(buf)-1])
	buf[n] = 0
	if err != nil {
		t.log.Printf("[ERROR] Serial read failed for %s: %v\n", cmd, err)
		return n, err
	}

	t.log.Printf("[INFO] AT> %s\n< %s\n", cmd, Response(buf[:n]))
	return n, nil
}

/*
[Blocking]

Fill `dst` from the pending queue, waiting for more input until it is full
or `ctx` is done.
*/
func (t *Transport) readInto(ctx context.Context, dst []byte) (int, error) {
	n := 0
	for n < len(dst) {
		t.lock.Lock()
		for n < len(dst) && t.pending.Len() > 0 {
			chunk := t.pending.PopFront()
			c := copy(dst[n:], chunk)
			n += c
			if c < len(chunk) {
				t.pending.PushFront(chunk[c:])
			}
		}
		readErr := t.readErr
		t.lock.Unlock()

		if n == len(dst) {
			break
		}
		if readErr != nil {
			return n, fmt.Errorf("error reading from port: %w", readErr)
		}

		select {
		case <-t.notify:
		case <-ctx.Done():
			return n, nil
		case <-t.done:
			return n, ErrClosed
		}
	}
	return n, nil
}

// Send runs `cmd` with a freshly allocated reply buffer, see Exchange.
func (t *Transport) Send(cmd string, timeout time.Duration) (Response, error) {
	buf := make([]byte, t.bufSize)
	n, err := t.Exchange(cmd, buf, timeout)
	return Response(buf[:n]), err
}

// Close stops the reader and closes the port if it can be closed.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if c, ok := t.port.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}
