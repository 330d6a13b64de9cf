// Package health periodically logs process/host resource stats alongside
// the router's structured logs.
package health

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Report is one sampled snapshot of process/host resource usage.
type Report struct {
	CPUPercent    float64
	MemoryPercent float64
}

// Sample takes one resource usage snapshot.
func Sample() (Report, error) {
	cpuPercents, err := cpu.Percent(0, false)
	if err != nil {
		return Report{}, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Report{}, err
	}
	var cpuPct float64
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}
	return Report{CPUPercent: cpuPct, MemoryPercent: vm.UsedPercent}, nil
}

// Run logs a Report every interval until ctx is cancelled.
func Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r, err := Sample()
			if err != nil {
				log.Debug().Err(err).Msg("health sample failed")
				continue
			}
			log.Debug().Float64("cpu_percent", r.CPUPercent).Float64("mem_percent", r.MemoryPercent).Msg("resource sample")
		}
	}
}
