// Package modemtest provides a scripted in-memory modem for tests.
package modemtest

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Part is one piece of a scripted reply, written after Delay.
type Part struct {
	Delay time.Duration
	Data  string
}

// Now is a reply part written immediately.
func Now(data string) Part {
	return Part{Data: data}
}

// After is a reply part written `d` after the previous one.
func After(d time.Duration, data string) Part {
	return Part{Delay: d, Data: data}
}

// OK is the plain success reply.
const OK = "\r\nOK\r\n"

// Modem answers commands written to Port with scripted replies. Commands
// without a script get the Fallback reply.
type Modem struct {
	Fallback string
	Echo     bool

	host net.Conn
	dev  net.Conn

	lock     sync.Mutex
	replies  map[string][]Part
	received []string
	done     chan struct{}
}

// New starts a modem replying OK to everything.
func New() *Modem {
	host, dev := net.Pipe()
	m := &Modem{
		Fallback: OK,
		host:     host,
		dev:      dev,
		replies:  make(map[string][]Part),
		done:     make(chan struct{}),
	}
	go m.serve()
	return m
}

// Port is the host end of the link.
func (m *Modem) Port() io.ReadWriteCloser {
	return m.host
}

// Reply scripts the answer to `cmd`, given without the line ending.
func (m *Modem) Reply(cmd string, parts ...Part) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.replies[cmd] = parts
}

// Inject writes unsolicited bytes to the host.
func (m *Modem) Inject(data string) error {
	_, err := io.WriteString(m.dev, data)
	return err
}

// Received returns the commands seen so far, in order.
func (m *Modem) Received() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]string(nil), m.received...)
}

// Close shuts both ends of the link and waits for the modem to stop.
func (m *Modem) Close() error {
	m.dev.Close()
	err := m.host.Close()
	<-m.done
	return err
}

func (m *Modem) serve() {
	defer close(m.done)
	r := bufio.NewReader(m.dev)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")

		m.lock.Lock()
		m.received = append(m.received, cmd)
		parts, ok := m.replies[cmd]
		fallback := m.Fallback
		m.lock.Unlock()

		if !ok {
			parts = []Part{Now(fallback)}
		}
		if m.Echo {
			parts = append([]Part{Now(cmd + "\r")}, parts...)
		}
		for _, p := range parts {
			if p.Delay > 0 {
				time.Sleep(p.Delay)
			}
			if _, err := io.WriteString(m.dev, p.Data); err != nil {
				return
			}
		}
	}
}
