package execshell

import "sort"

// RuntimeHandle is the operating system identifier assigned to a started process.
type RuntimeHandle int

// ProcessRegistry maps runtime handles to running processes.
// It is only accessed from the event loop.
type ProcessRegistry struct {
	processes map[RuntimeHandle]*Process
}

// NewProcessRegistry creates an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{processes: make(map[RuntimeHandle]*Process)}
}

// Register records a running process under its handle.
func (registry *ProcessRegistry) Register(handle RuntimeHandle, process *Process) {
	registry.processes[handle] = process
}

// Release removes the handle.
func (registry *ProcessRegistry) Release(handle RuntimeHandle) {
	delete(registry.processes, handle)
}

// Lookup returns the process registered under the handle.
func (registry *ProcessRegistry) Lookup(handle RuntimeHandle) (*Process, bool) {
	process, exists := registry.processes[handle]
	return process, exists
}

// Len returns the number of running processes.
func (registry *ProcessRegistry) Len() int {
	return len(registry.processes)
}

// Processes returns the running processes ordered by handle.
func (registry *ProcessRegistry) Processes() []*Process {
	handles := make([]RuntimeHandle, 0, len(registry.processes))
	for handle := range registry.processes {
		handles = append(handles, handle)
	}
	sort.Slice(handles, func(leftIndex int, rightIndex int) bool {
		return handles[leftIndex] < handles[rightIndex]
	})

	processes := make([]*Process, 0, len(handles))
	for _, handle := range handles {
		processes = append(processes, registry.processes[handle])
	}
	return processes
}
