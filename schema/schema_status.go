package schema

import "time"

// StoreStatus holds status information about the revision index storage.
type StoreStatus struct {
	Backend        string         `json:"backend"`
	Location       string         `json:"location"`
	Connected      bool           `json:"connected"`
	Archivers      map[string]int `json:"archivers"`
	TotalRevisions int            `json:"total_revisions"`
	TotalBlobs     int            `json:"total_blobs"`
	NewestRevision time.Time      `json:"newest_revision"`
	OldestRevision time.Time      `json:"oldest_revision"`
	SizeBytes      int64          `json:"size_bytes"`
	SchemaVersion  int            `json:"schema_version,omitempty"`
}
