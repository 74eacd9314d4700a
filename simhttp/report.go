package simhttp

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Potsdam-Sensors/sim-https-get/wavesharecomm"
	"github.com/google/uuid"
)

// StepResult records one command of a run.
type StepResult struct {
	Name     string
	Command  string
	Response wavesharecomm.Response
	Err      error
	Elapsed  time.Duration
}

// Report is what a Run saw. Nothing in it influenced the run except Length.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult

	Attached   bool
	Address    string
	Action     HTTPAction
	ActionSeen bool
	Length     int
	Payload    []byte
}

func newReport() *Report {
	return &Report{
		RunID:   uuid.New().String(),
		Started: time.Now(),
	}
}

// Step returns the first result recorded under `name`.
func (r *Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Failed returns the steps whose exchange failed.
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Summary writes a table of the steps to `w`.
func (r *Report) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run %s (%s)\n", r.RunID, r.Finished.Sub(r.Started).Round(time.Millisecond))
	fmt.Fprintln(tw, "STEP\tCOMMAND\tRESULT\tTIME\tERROR")
	for _, s := range r.Steps {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			s.Command,
			s.Response.Status(),
			s.Elapsed.Round(time.Millisecond),
			errText)
	}
	fmt.Fprintf(tw, "attached=%t address=%s", r.Attached, r.Address)
	if r.ActionSeen {
		fmt.Fprintf(tw, " status=%d", r.Action.Status)
	}
	fmt.Fprintf(tw, " length=%d read=%d\n", r.Length, len(r.Payload))
	return tw.Flush()
}

// WritePayload stores the body read from the modem at `path`.
func (r *Report) WritePayload(path string) error {
	if err := os.WriteFile(path, r.Payload, 0o644); err != nil {
		return fmt.Errorf("failed to write payload to %s: %w", path, err)
	}
	return nil
}

// Commands lists the commands sent, in order.
func (r *Report) Commands() []string {
	cmds := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		cmds[i] = s.Command
	}
	return cmds
}

func (r *Report) String() string {
	var sb strings.Builder
	r.Summary(&sb) // nolint: errcheck
	return sb.String()
}
