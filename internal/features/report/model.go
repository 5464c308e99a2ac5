package report

import (
	"time"

	"crm-reports/internal/features/record"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Params identifies one report run. It holds no live resources so it can be
// queued and executed on another process.
type Params struct {
	Report    string       `json:"report"`
	UserID    string       `json:"user_id"`
	TenantID  string       `json:"tenant_id,omitempty"`
	AppLabel  string       `json:"app_label"`
	ModelName string       `json:"model_name"`
	Query     record.Query `json:"query"`
}

// SavedReport is the stored output of a successful run.
type SavedReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    string             `json:"tenant_id,omitempty" bson:"tenant_id,omitempty"`
	Report      string             `json:"report" bson:"report"`
	Module      string             `json:"module" bson:"module"`
	RunBy       string             `json:"run_by" bson:"run_by"`
	RunByEmail  string             `json:"run_by_email,omitempty" bson:"run_by_email,omitempty"`
	FileName    string             `json:"file_name" bson:"file_name"`
	FileKey     string             `json:"-" bson:"file_key"`
	URL         string             `json:"url" bson:"url"`
	ContentType string             `json:"content_type" bson:"content_type"`
	StorageType string             `json:"storage_type" bson:"storage_type"`
	SizeBytes   int64              `json:"size_bytes" bson:"size_bytes"`
	RowCount    int                `json:"row_count" bson:"row_count"`
	SkippedRows int                `json:"skipped_rows" bson:"skipped_rows"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type SavedReportFilter struct {
	TenantID string
	RunBy    string
	Module   string
	Page     int64
	Limit    int64
}

// Outcome is what an invocation from the admin surface produced.
type Outcome struct {
	Ran    bool         `json:"ran"`
	Queued bool         `json:"queued,omitempty"`
	Reason string       `json:"reason,omitempty"`
	TaskID string       `json:"task_id,omitempty"`
	Saved  *SavedReport `json:"saved,omitempty"`
}

const (
	ReasonLimit  = "limit"
	ReasonFailed = "failed"
	ReasonEmpty  = "empty"
)

// DefinitionView describes a registered report for listings.
type DefinitionView struct {
	Model       string   `json:"model"`
	Name        string   `json:"name"`
	Action      string   `json:"action"`
	Description string   `json:"description,omitempty"`
	MaxRecords  int      `json:"max_records,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Format      string   `json:"format"`
	Async       bool     `json:"async"`
}
