// Package diag prints what the program is running on.
package diag

import (
	"fmt"
	"io"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StoragePath is the filesystem reported as the host's storage size.
const StoragePath = "/"

// Info describes the host.
type Info struct {
	Hostname     string
	Platform     string
	Kernel       string
	Arch         string
	CPUs         int
	GoVersion    string
	MemTotal     uint64
	MemAvailable uint64
	StorageTotal uint64
	StorageFree  uint64
	Device       string
}

// Collect gathers the host information. `device` is the serial device the
// modem is expected on. Fields that cannot be read stay zero, and the first
// error is returned alongside whatever was collected.
func Collect(device string) (Info, error) {
	var (
		firstErr error
		info     = Info{
			Arch:      runtime.GOARCH,
			CPUs:      runtime.NumCPU(),
			GoVersion: runtime.Version(),
			Device:    device,
		}
	)
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if h, err := host.Info(); err != nil {
		keep(fmt.Errorf("failed to read host info: %w", err))
	} else {
		info.Hostname = h.Hostname
		info.Platform = fmt.Sprintf("%s %s %s", h.OS, h.Platform, h.PlatformVersion)
		info.Kernel = h.KernelVersion
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
	}

	if n, err := cpu.Counts(true); err != nil {
		keep(fmt.Errorf("failed to count CPUs: %w", err))
	} else if n > 0 {
		info.CPUs = n
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		keep(fmt.Errorf("failed to read memory stats: %w", err))
	} else {
		info.MemTotal = vm.Total
		info.MemAvailable = vm.Available
	}

	if du, err := disk.Usage(StoragePath); err != nil {
		keep(fmt.Errorf("failed to read usage of %s: %w", StoragePath, err))
	} else {
		info.StorageTotal = du.Total
		info.StorageFree = du.Free
	}

	return info, firstErr
}

const mib = 1024 * 1024

// Print writes `info` to `w` in a few lines.
func Print(w io.Writer, info Info) error {
	_, err := fmt.Fprintf(w,
		"This is %s (%s, kernel %s, %s) with %d CPU core(s), %s\n"+
			"%d MiB storage, %d MiB free\n"+
			"%d MiB memory, %d MiB available\n"+
			"Modem expected on %s\n",
		info.Hostname,
		info.Platform,
		info.Kernel,
		info.Arch,
		info.CPUs,
		info.GoVersion,
		info.StorageTotal/mib,
		info.StorageFree/mib,
		info.MemTotal/mib,
		info.MemAvailable/mib,
		info.Device)
	return err
}
