package models

// Capacity is the total size of a storage system.
type Capacity struct {
	TotalBytes int64 `json:"totalBytes,omitempty"`
}

// Quota is the per-user allocation on a storage system.
type Quota struct {
	BytesPerUser int64 `json:"bytesPerUser,omitempty"`
}

// Storage is the payload shape of a storage-system resource.
// It is selected whenever the payload carries a storageType marker.
type Storage struct {
	// StorageType is the variant marker, e.g. "POSIX", "lustre", "S3".
	StorageType string `json:"storageType"`

	Connection  *Connection  `json:"connection,omitempty"`
	FileSystems []FileSystem `json:"fileSystems,omitempty"`
	Capacity    *Capacity    `json:"capacity,omitempty"`
	Quota       *Quota       `json:"quota,omitempty"`
}
