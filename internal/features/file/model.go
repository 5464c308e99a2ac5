package file

import (
	"time"
)

const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

// File describes a stored blob.
type File struct {
	Key         string    `json:"key" bson:"key"`
	URL         string    `json:"url" bson:"url"`
	Path        string    `json:"path,omitempty" bson:"path,omitempty"`
	Size        int64     `json:"size" bson:"size"`
	MimeType    string    `json:"mime_type" bson:"mime_type"`
	StorageType string    `json:"storage_type" bson:"storage_type"` // local, s3
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
