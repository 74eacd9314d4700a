// Package logging provides the per-domain loggers of the application.
// Messages carry a level tag ("[DEBUG]", "[INFO]", "[ERROR]", ...) and are
// filtered by level before they reach stdout and, optionally, a rotating
// log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/Potsdam-Sensors/sim-https-get/config"
	"github.com/hashicorp/logutils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Domain identifies the part of the program a logger belongs to.
type Domain uint8

const (
	Main Domain = iota
	Transport
	Sequence
	Modem
	Diag
)

var domainNames = [...]string{
	Main:      "Main",
	Transport: "Transport",
	Sequence:  "Sequence",
	Modem:     "Modem",
	Diag:      "Diag",
}

func (d Domain) String() string {
	if int(d) < len(domainNames) {
		return domainNames[d]
	}
	return fmt.Sprintf("Domain(%d)", d)
}

// AllDomains returns every valid Domain.
func AllDomains() []Domain {
	return []Domain{Main, Transport, Sequence, Modem, Diag}
}

var (
	lock   sync.Mutex
	filter = newFilter(os.Stdout, "INFO")
	file   *lumberjack.Logger
)

func newFilter(w io.Writer, level string) *logutils.LevelFilter {
	levels := make([]logutils.LogLevel, len(config.Levels))
	for i, l := range config.Levels {
		levels[i] = logutils.LogLevel(l)
	}
	return &logutils.LevelFilter{
		Levels:   levels,
		MinLevel: logutils.LogLevel(level),
		Writer:   w,
	}
}

// Init points all loggers handed out afterwards at stdout, teed into a
// rotating file if cfg.File is set, filtered at cfg.Level.
func Init(cfg config.LogConfig) {
	lock.Lock()
	defer lock.Unlock()

	var w io.Writer = os.Stdout
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	filter = newFilter(w, cfg.Level)
}

// SetOutput replaces the destination of subsequently created loggers,
// keeping the level.
func SetOutput(w io.Writer, level string) {
	lock.Lock()
	defer lock.Unlock()
	filter = newFilter(w, level)
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	lock.Lock()
	defer lock.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// GetLogger returns a logger for the given domain.
func GetLogger(d Domain) *log.Logger {
	lock.Lock()
	defer lock.Unlock()
	return log.New(filter, d.String()+" ", log.Ldate|log.Ltime|log.Lshortfile)
}
