package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Potsdam-Sensors/sim-https-get/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainString(t *testing.T) {
	for _, d := range AllDomains() {
		assert.NotContains(t, d.String(), "Domain(")
	}
	assert.Equal(t, "Domain(42)", Domain(42).String())
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "INFO")
	defer SetOutput(&bytes.Buffer{}, "INFO")

	l := GetLogger(Transport)
	l.Printf("[DEBUG] hidden\n")
	l.Printf("[INFO] shown\n")
	l.Printf("[ERROR] also shown\n")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
	assert.Contains(t, out, "Transport ")
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simhttp.log")
	Init(config.LogConfig{Level: "DEBUG", File: path, MaxSizeMB: 1, MaxBackups: 1})

	GetLogger(Main).Printf("[DEBUG] into the file\n")
	require.NoError(t, Close())

	assert.FileExists(t, path)
	SetOutput(&bytes.Buffer{}, "INFO")
}
