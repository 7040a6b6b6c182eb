package ports

// MemoryMonitor reports host memory.
type MemoryMonitor interface {
	// AvailableBytes returns memory available to new allocations without swapping.
	AvailableBytes() (uint64, error)
}
