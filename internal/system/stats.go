package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of process and host resource consumption
type Usage struct {
	CPUPercent  float64 // Process CPU since the previous sample
	RSS         uint64  // Process resident memory in bytes
	HostMemUsed float64 // Host memory used, percent
}

func (u Usage) String() string {
	return fmt.Sprintf("cpu %.1f%% | rss %.1f MiB | host mem %.1f%%",
		u.CPUPercent, float64(u.RSS)/(1<<20), u.HostMemUsed)
}

// UsageMonitor samples the current process through gopsutil
type UsageMonitor struct {
	proc *process.Process
}

func NewUsageMonitor() (*UsageMonitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("usage monitor: %w", err)
	}
	// Prime the CPU counter so the first Sample covers a real interval
	p.Percent(0)
	return &UsageMonitor{proc: p}, nil
}

// Sample never blocks on an interval; fields that fail to read stay zero
func (m *UsageMonitor) Sample() (Usage, error) {
	var u Usage

	cpu, err := m.proc.Percent(0)
	if err != nil {
		return u, fmt.Errorf("process cpu: %w", err)
	}
	u.CPUPercent = cpu

	if mi, err := m.proc.MemoryInfo(); err == nil {
		u.RSS = mi.RSS
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		u.HostMemUsed = vm.UsedPercent
	}

	return u, nil
}
