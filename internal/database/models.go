package database

import (
	"time"

	"video-inventory/internal/probe"
)

// FileRecord is one row of the inventory, keyed by Identity.
type FileRecord struct {
	Identity        string    `json:"identity"`
	Name            string    `json:"name"`
	Extension       string    `json:"extension"`
	Path            string    `json:"path"`
	SizeBytes       int64     `json:"sizeBytes"`
	ModifiedAt      time.Time `json:"modifiedAt"`
	Fingerprint     *string   `json:"fingerprint,omitempty"`
	DurationSeconds *float64  `json:"durationSeconds,omitempty"`
	Resolution      *string   `json:"resolution,omitempty"`
	FrameRate       *float64  `json:"frameRate,omitempty"`
	VideoCodec      *string   `json:"videoCodec,omitempty"`
	BitrateKbps     *int64    `json:"bitrateKbps,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasCompleteMetadata reports whether duration, resolution and codec are all
// stored. Frame rate and bitrate are not required.
func (r *FileRecord) HasCompleteMetadata() bool {
	return r != nil && r.DurationSeconds != nil && r.Resolution != nil && r.VideoCodec != nil
}

// Attributes are the filesystem fields written on every upsert.
type Attributes struct {
	Name       string
	Extension  string
	Path       string
	SizeBytes  int64
	ModifiedAt time.Time
}

// FileUpsert describes one write. Attributes are always stored; Metadata and
// Fingerprint replace their field group only when non-nil.
type FileUpsert struct {
	Identity    string
	Attributes  Attributes
	Metadata    *probe.Metadata
	Fingerprint *string
}

// Stats summarizes the inventory.
type Stats struct {
	TotalFiles             int     `json:"totalFiles"`
	FingerprintedFiles     int     `json:"fingerprintedFiles"`
	WithMetadataFiles      int     `json:"withMetadataFiles"`
	TotalBytes             int64   `json:"totalBytes"`
	AverageSizeBytes       float64 `json:"averageSizeBytes"`
	TotalDurationSeconds   float64 `json:"totalDurationSeconds"`
	AverageDurationSeconds float64 `json:"averageDurationSeconds"`
}
