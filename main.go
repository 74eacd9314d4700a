package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Potsdam-Sensors/sim-https-get/config"
	"github.com/Potsdam-Sensors/sim-https-get/diag"
	"github.com/Potsdam-Sensors/sim-https-get/logging"
	"github.com/Potsdam-Sensors/sim-https-get/simhttp"
	"github.com/Potsdam-Sensors/sim-https-get/wavesharecomm"
)

const appName = "sim-https-get"

var version = "undefined"

func main() {
	cfgPath := flag.String("c", "", "path to a YAML or TOML config file")
	dev := flag.String("d", "", "path to modem device, overrides the config")
	baud := flag.Uint("b", 0, "baud rate, overrides the config")
	url := flag.String("url", "", "URL to fetch, overrides the config")
	out := flag.String("o", "", "file to store the body in, overrides the config")
	verbose := flag.Bool("v", false, "log raw modem traffic")
	vsn := flag.Bool("version", false, "report version and exit")
	flag.Parse()
	if *vsn {
		fmt.Printf("%s %s\n", appName, version)
		os.Exit(0)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	applyFlags(cfg, *dev, *baud, *url, *out, *verbose)
	if err = cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logging.Init(cfg.Log)
	defer logging.Close()
	logger := logging.GetLogger(logging.Main)

	fmt.Printf("Hello from %s %s!\n", appName, version)
	dlog := logging.GetLogger(logging.Diag)
	info, err := diag.Collect(cfg.Serial.Port)
	if err != nil {
		dlog.Printf("[WARN] Incomplete diagnostics: %v\n", err)
	}
	if err = diag.Print(os.Stdout, info); err != nil {
		dlog.Printf("[ERROR] Cannot print diagnostics: %v\n", err)
	}

	port, err := wavesharecomm.OpenPort(cfg.Serial)
	if err != nil {
		logger.Printf("[CRITICAL] failed to open port: %v\n", err)
		logging.Close()
		os.Exit(1)
	}
	if cfg.Log.Trace {
		port = wavesharecomm.Trace(port, logging.GetLogger(logging.Modem))
	}

	// the transport owns the port from here on and closes it
	transport := wavesharecomm.NewTransport(port, cfg.Serial.BufferSize, logging.GetLogger(logging.Transport))
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Printf("[ERROR] Cannot close %s: %v\n", cfg.Serial.Port, err)
		}
	}()

	seq := simhttp.New(transport, cfg, logging.GetLogger(logging.Sequence))
	rep := seq.Run()

	if err = rep.Summary(os.Stdout); err != nil {
		logger.Printf("[ERROR] Cannot print summary: %v\n", err)
	}

	if cfg.HTTP.Output != "" && len(rep.Payload) > 0 {
		if err = rep.WritePayload(cfg.HTTP.Output); err != nil {
			logger.Printf("[ERROR] %v\n", err)
		} else {
			logger.Printf("[INFO] Wrote %d bytes to %s\n", len(rep.Payload), cfg.HTTP.Output)
		}
	}

	fmt.Println("Done with SIM HTTP!")
}

func applyFlags(cfg *config.Config, dev string, baud uint, url, out string, verbose bool) {
	if dev != "" {
		cfg.Serial.Port = dev
	}
	if baud != 0 {
		cfg.Serial.Baud = baud
	}
	if url != "" {
		cfg.HTTP.URL = url
	}
	if out != "" {
		cfg.HTTP.Output = out
	}
	if verbose {
		cfg.Log.Trace = true
	}
	// wire trace lines are logged at DEBUG
	if cfg.Log.Trace && cfg.Log.Level != "TRACE" {
		cfg.Log.Level = "DEBUG"
	}
}
