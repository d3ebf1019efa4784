package models

// ExecutionCommand describes how jobs of one kind are launched on a compute
// resource, e.g. an MPI launcher prefix and the modules it needs loaded.
type ExecutionCommand struct {
	CommandType   string `json:"commandType,omitempty"`
	CommandPrefix string `json:"commandPrefix,omitempty"`

	// ModuleDependencies is ordered; modules are loaded in this order.
	ModuleDependencies []string `json:"moduleDependencies,omitempty"`
}

// CommandPath names one scheduler executable (e.g. "sbatch", "squeue").
type CommandPath struct {
	Name string `json:"name,omitempty"`
}

// Partition is a named queue of a batch system.
type Partition struct {
	Name          string        `json:"name,omitempty"`
	TotalNodes    int           `json:"totalNodes,omitempty"`
	NodeHardware  *NodeHardware `json:"nodeHardware,omitempty"`
	ComputeQuotas *ComputeQuota `json:"computeQuotas,omitempty"`
}

// BatchSystem describes a queueing scheduler such as SLURM or PBS.
type BatchSystem struct {
	JobManager   string        `json:"jobManager,omitempty"`
	CommandPaths []CommandPath `json:"commandPaths,omitempty"`
	Partitions   []Partition   `json:"partitions,omitempty"`
}

// ForkSystem describes direct (non-queued) execution on a host.
type ForkSystem struct {
	SystemType   string        `json:"systemType,omitempty"`
	Version      string        `json:"version,omitempty"`
	NodeHardware *NodeHardware `json:"nodeHardware,omitempty"`
}

// Compute is the payload shape of a compute/scheduler resource.
// It is selected whenever the payload carries a schedulerType marker.
type Compute struct {
	// SchedulerType is the variant marker, e.g. "SLURM", "FORK".
	SchedulerType string `json:"schedulerType"`

	Connection        *Connection        `json:"connection,omitempty"`
	ExecutionCommands []ExecutionCommand `json:"executionCommands,omitempty"`
	BatchSystem       *BatchSystem       `json:"batchSystem,omitempty"`
	ForkSystem        *ForkSystem        `json:"forkSystem,omitempty"`
}
