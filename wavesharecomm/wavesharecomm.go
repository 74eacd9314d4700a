// Package wavesharecomm exchanges AT commands with a SIM7600 modem, such as
// the one on the Waveshare LTE hat, over a serial port.
package wavesharecomm

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Potsdam-Sensors/sim-https-get/config"
	"github.com/jacobsa/go-serial/serial"
)

// LineEnding terminates every command written to the modem.
const LineEnding = "\r\n"

/*
Get the port object for communicating with the modem,
open with the configuration in `cfg`.

Please defer `.Close()` on the `port` in the calling function.
*/
func OpenPort(cfg config.SerialConfig) (port io.ReadWriteCloser, err error) {
	opts, err := portOptions(cfg)
	if err != nil {
		return nil, err
	}
	port, err = serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Port, err)
	}
	return port, nil
}

func portOptions(cfg config.SerialConfig) (serial.OpenOptions, error) {
	var parity serial.ParityMode
	switch strings.ToLower(cfg.Parity) {
	case "", "none":
		parity = serial.PARITY_NONE
	case "odd":
		parity = serial.PARITY_ODD
	case "even":
		parity = serial.PARITY_EVEN
	default:
		return serial.OpenOptions{}, fmt.Errorf("unknown parity %q", cfg.Parity)
	}

	// MinimumReadSize 0 with an inter-character timeout makes Read return
	// (possibly with io.EOF) when the line goes quiet, so the reader never
	// blocks past a closed port.
	return serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.Baud,
		DataBits:              cfg.DataBits,
		StopBits:              cfg.StopBits,
		ParityMode:            parity,
		RTSCTSFlowControl:     false,
		InterCharacterTimeout: cfg.InterCharacterTimeoutMs,
		MinimumReadSize:       0,
	}, nil
}

// WriteCommand writes `cmd` followed by the line ending to `port`.
func WriteCommand(port io.Writer, cmd string, logger *log.Logger) error {
	logger.Printf("[DEBUG] Sending command over serial: %s\n", cmd)
	_, err := io.WriteString(port, cmd+LineEnding)
	return err
}
