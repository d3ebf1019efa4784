package models

// Host is a network endpoint that fronts a resource. Lower Priority values
// are preferred by clients choosing between hosts.
type Host struct {
	Hostname string `json:"hostname,omitempty"`
	IP       string `json:"ip,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// Connection describes how a client reaches a resource or one of its hosts.
type Connection struct {
	// ConnectionProtocol is the transport, e.g. "SSH", "GRIDFTP", "HTTPS".
	ConnectionProtocol string `json:"connectionProtocol,omitempty"`

	// SecurityProtocol is the authentication scheme, e.g. "SSH_KEYS".
	SecurityProtocol string `json:"securityProtocol,omitempty"`

	Port int `json:"port,omitempty"`

	// ProxyHost and ProxyPort are set when access goes through a jump host.
	ProxyHost string `json:"proxyHost,omitempty"`
	ProxyPort int    `json:"proxyPort,omitempty"`
}

// NodeHardware describes the hardware of a single compute node.
type NodeHardware struct {
	CPUType    string `json:"cpuType,omitempty"`
	CPUCount   int    `json:"cpuCount,omitempty"`
	GPUType    string `json:"gpuType,omitempty"`
	GPUCount   int    `json:"gpuCount,omitempty"`
	MemoryType string `json:"memoryType,omitempty"`

	// MemorySize is free-form, e.g. "192GB".
	MemorySize string `json:"memorySize,omitempty"`
}

// ComputeQuota holds the per-partition scheduling limits.
type ComputeQuota struct {
	MaxJobsTotal   int `json:"maxJobsTotal,omitempty"`
	MaxJobsPerUser int `json:"maxJobsPerUser,omitempty"`
	MaxNodesPerJob int `json:"maxNodesPerJob,omitempty"`

	// MaxTimePerJob is expressed in minutes.
	MaxTimePerJob int `json:"maxTimePerJob,omitempty"`

	MaxMemoryPerJob string `json:"maxMemoryPerJob,omitempty"`
	MaxCPUsPerJob   int    `json:"maxCPUsPerJob,omitempty"`
	MaxGPUsPerJob   int    `json:"maxGPUsPerJob,omitempty"`
}

// FileSystem lists the well-known directories exposed by a storage system.
type FileSystem struct {
	RootDir    string `json:"rootDir,omitempty"`
	HomeDir    string `json:"homeDir,omitempty"`
	ScratchDir string `json:"scratchDir,omitempty"`
	WorkDir    string `json:"workDir,omitempty"`
	ArchiveDir string `json:"archiveDir,omitempty"`
}
