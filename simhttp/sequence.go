// Package simhttp fetches a URL through the modem's built-in HTTP(S)
// client: it brings up a PDP context, runs the request, reads the body back
// and tears the HTTP service down again.
package simhttp

import (
	"log"
	"strconv"
	"time"

	"github.com/Potsdam-Sensors/sim-https-get/config"
	"github.com/Potsdam-Sensors/sim-https-get/wavesharecomm"
)

// Commander runs one AT command and returns what came back in time.
type Commander interface {
	Send(cmd string, timeout time.Duration) (wavesharecomm.Response, error)
}

// Step names, as they appear in the report.
const (
	StepAttach    = "attach"
	StepContext   = "context"
	StepAuth      = "auth"
	StepActivate  = "activate"
	StepAddress   = "address"
	StepHTTPReset = "http-reset"
	StepHTTPInit  = "http-init"
	StepSSLOn     = "ssl-on"
	StepURL       = "url"
	StepReadMode  = "read-mode"
	StepAction    = "action"
	StepRead      = "read"
	StepHTTPTerm  = "http-term"
	StepSSLOff    = "ssl-off"
)

const (
	getMethod      = "0"
	readFromOffset = "0"
)

// Sequence runs the fixed command list of one HTTP GET.
//
// Steps never look at the outcome of earlier steps. Failures are logged and
// recorded, and the sequence carries on. The only branch is whether the
// body is read, which depends on the length in the HTTPACTION result.
type Sequence struct {
	cmd Commander
	cfg *config.Config
	log *log.Logger
}

// New creates a Sequence sending through `cmd`.
func New(cmd Commander, cfg *config.Config, logger *log.Logger) *Sequence {
	return &Sequence{
		cmd: cmd,
		cfg: cfg,
		log: logger,
	}
}

// Run executes the whole sequence and returns what happened.
func (s *Sequence) Run() *Report {
	rep := newReport()
	s.log.Printf("[INFO] Run %s: GET %s via APN %s\n",
		rep.RunID,
		s.cfg.HTTP.URL,
		s.cfg.PDP.APN)

	s.bringUp(rep)
	s.fetch(rep)
	s.tearDown(rep)

	rep.Finished = time.Now()
	if failed := rep.Failed(); len(failed) > 0 {
		s.log.Printf("[WARN] Run %s finished with %d failed steps\n",
			rep.RunID,
			len(failed))
	} else {
		s.log.Printf("[INFO] Run %s finished, %d bytes announced, %d bytes read\n",
			rep.RunID,
			rep.Length,
			len(rep.Payload))
	}
	return rep
}

func (s *Sequence) bringUp(rep *Report) {
	var (
		pdp = s.cfg.PDP
		t   = s.cfg.Timing
		cid = strconv.Itoa(pdp.CID)
	)

	resp := s.step(rep, StepAttach, wavesharecomm.Read(wavesharecomm.CmdAttach), t.Command())
	rep.Attached, _ = ParseAttached(resp.String())

	s.step(rep, StepContext,
		wavesharecomm.Set(wavesharecomm.CmdDefineContext,
			cid,
			wavesharecomm.Quote(pdp.Type),
			wavesharecomm.Quote(pdp.APN)),
		t.Command())
	s.step(rep, StepAuth,
		wavesharecomm.Set(wavesharecomm.CmdContextAuth,
			cid,
			strconv.Itoa(pdp.AuthType),
			wavesharecomm.Quote(pdp.User),
			wavesharecomm.Quote(pdp.Password)),
		t.Command())
	s.step(rep, StepActivate,
		wavesharecomm.Set(wavesharecomm.CmdActivate, "1", cid),
		t.Activate())

	resp = s.step(rep, StepAddress,
		wavesharecomm.Set(wavesharecomm.CmdContextAddress, cid),
		t.Command())
	rep.Address = ParsePDPAddress(resp.String())
}

func (s *Sequence) fetch(rep *Report) {
	var (
		h = s.cfg.HTTP
		t = s.cfg.Timing
	)

	// a session left over from an earlier run makes HTTPINIT fail
	s.step(rep, StepHTTPReset, wavesharecomm.Execute(wavesharecomm.CmdHTTPTerm), t.Command())
	s.step(rep, StepHTTPInit, wavesharecomm.Execute(wavesharecomm.CmdHTTPInit), t.Command())
	if h.SSL {
		s.step(rep, StepSSLOn, wavesharecomm.Set(wavesharecomm.CmdHTTPSSL, "1"), t.Command())
	}
	s.step(rep, StepURL,
		wavesharecomm.Set(wavesharecomm.CmdHTTPParam,
			wavesharecomm.Quote("URL"),
			wavesharecomm.Quote(h.URL)),
		t.Command())
	s.step(rep, StepReadMode,
		wavesharecomm.Set(wavesharecomm.CmdHTTPParam,
			wavesharecomm.Quote("READMODE"),
			strconv.Itoa(h.ReadMode)),
		t.Command())

	resp := s.step(rep, StepAction,
		wavesharecomm.Set(wavesharecomm.CmdHTTPAction, getMethod),
		t.Action())
	rep.Length = ParseHTTPLength(resp.String())
	rep.Action, rep.ActionSeen = ParseHTTPAction(resp.String())
	if rep.ActionSeen {
		s.log.Printf("[INFO] HTTP status %d, length %d\n",
			rep.Action.Status,
			rep.Action.Length)
	}

	if rep.Length <= 0 {
		s.log.Printf("[INFO] No body to read\n")
		return
	}

	resp = s.step(rep, StepRead,
		wavesharecomm.Set(wavesharecomm.CmdHTTPRead,
			readFromOffset,
			strconv.Itoa(rep.Length)),
		t.Read())
	rep.Payload = ExtractHTTPReadPayload(resp)
}

func (s *Sequence) tearDown(rep *Report) {
	t := s.cfg.Timing
	s.step(rep, StepHTTPTerm, wavesharecomm.Execute(wavesharecomm.CmdHTTPTerm), t.Command())
	if s.cfg.HTTP.SSL {
		s.step(rep, StepSSLOff, wavesharecomm.Set(wavesharecomm.CmdHTTPSSL, "0"), t.Command())
	}
}

func (s *Sequence) step(rep *Report, name, cmd string, timeout time.Duration) wavesharecomm.Response {
	start := time.Now()
	resp, err := s.cmd.Send(cmd, timeout)
	if err != nil {
		s.log.Printf("[ERROR] Step %s (%s) failed: %v\n", name, cmd, err)
	}
	rep.Steps = append(rep.Steps, StepResult{
		Name:     name,
		Command:  cmd,
		Response: resp,
		Err:      err,
		Elapsed:  time.Since(start),
	})
	return resp
}
