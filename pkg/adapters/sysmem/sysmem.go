// Package sysmem reports host memory through gopsutil.
package sysmem

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/user/screenreel/pkg/ports"
)

// Monitor implements ports.MemoryMonitor.
type Monitor struct{}

// New creates a new Monitor.
func New() *Monitor {
	return &Monitor{}
}

// AvailableBytes returns the memory available for new allocations.
func (m *Monitor) AvailableBytes() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("read memory stats: %w", err)
	}
	return vm.Available, nil
}

var _ ports.MemoryMonitor = (*Monitor)(nil)
