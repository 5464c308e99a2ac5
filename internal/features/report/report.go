package report

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/features/record"
	"crm-reports/pkg/utils"

	"go.uber.org/zap"
)

// State is the lifecycle position of a Report.
type State int

const (
	StateConstructed State = iota
	StateLimitChecked
	StateCollecting
	StateSerializing
	StatePersisted
	StateNotified
	StateErrored
	StateNotifiedFailure
)

var stateNames = [...]string{
	"constructed",
	"limit-checked",
	"collecting",
	"serializing",
	"persisted",
	"notified",
	"errored",
	"notified-failure",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const filenameTimeLayout = "20060102-150405.000000"

// FieldSource lists the declared fields of a module.
type FieldSource interface {
	FieldNames(ctx context.Context, module string) ([]string, error)
}

// Deps are the collaborators of a single run.
type Deps struct {
	Fields FieldSource
	Store  SavedReportStore
	Logger *zap.Logger
	Now    func() time.Time
}

// Report is one execution of a Definition.
type Report struct {
	def    *Definition
	params Params
	deps   Deps
	logger *zap.Logger

	state     State
	lookups   []FieldLookup
	data      []Row
	rowErrors []RowError
}

// NewReport prepares a run. It does no I/O.
func NewReport(def *Definition, params Params, deps Deps) *Report {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Report{
		def:    def.clone(),
		params: params,
		deps:   deps,
		logger: deps.Logger.With(
			zap.String("report", def.Name),
			zap.String("module", params.ModelName),
			zap.String("user_id", params.UserID),
		),
	}
}

func (r *Report) Definition() *Definition { return r.def }
func (r *Report) Params() Params          { return r.params }
func (r *Report) State() State            { return r.state }
func (r *Report) Data() []Row             { return r.data }
func (r *Report) RowErrors() []RowError   { return r.rowErrors }

// CheckLimit reports whether count records may be exported.
func (r *Report) CheckLimit(count int64) bool {
	r.state = StateLimitChecked
	return r.def.MaxRecords <= 0 || count <= int64(r.def.MaxRecords)
}

func (r *Report) LimitMessage() string {
	return limitMessage(r.def.MaxRecords)
}

func limitMessage(max int) string {
	return fmt.Sprintf("This report is limited to %d records.", max)
}

// FieldLookups returns the explicit lookups, or one titled attribute lookup
// per module field.
func (r *Report) FieldLookups(ctx context.Context) ([]FieldLookup, error) {
	if r.lookups != nil {
		return r.lookups, nil
	}

	var lookups []FieldLookup
	switch {
	case r.def.FieldLookups != nil:
		l, err := r.def.FieldLookups(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("field lookups: %w", err)
		}
		lookups = l
	case len(r.def.Lookups) > 0:
		lookups = r.def.Lookups
	default:
		names, err := r.modelFields(ctx)
		if err != nil {
			return nil, err
		}
		lookups = make([]FieldLookup, len(names))
		for i, name := range names {
			lookups[i] = FieldLookup{Column: utils.Title(name), Spec: Attr(name)}
		}
	}
	r.lookups = lookups
	return lookups, nil
}

// Columns returns the output header: declared fields, else lookup columns,
// else the keys of the collected data, else the module fields.
func (r *Report) Columns(ctx context.Context) ([]string, error) {
	if len(r.def.Fields) > 0 {
		return append([]string(nil), r.def.Fields...), nil
	}
	if r.def.FieldLookups != nil || len(r.def.Lookups) > 0 {
		lookups, err := r.FieldLookups(ctx)
		if err != nil {
			return nil, err
		}
		columns := make([]string, len(lookups))
		for i, l := range lookups {
			columns[i] = l.Column
		}
		return columns, nil
	}
	if len(r.data) > 0 {
		return dataKeys(r.data), nil
	}
	names, err := r.modelFields(ctx)
	if err != nil {
		return nil, err
	}
	columns := make([]string, len(names))
	for i, name := range names {
		columns[i] = utils.Title(name)
	}
	return columns, nil
}

func (r *Report) modelFields(ctx context.Context) ([]string, error) {
	if r.deps.Fields == nil {
		return nil, fmt.Errorf("report %q declares no lookups and has no field source", r.def.Name)
	}
	names, err := r.deps.Fields.FieldNames(ctx, r.params.ModelName)
	if err != nil {
		return nil, fmt.Errorf("module fields: %w", err)
	}
	return names, nil
}

// CollectData replaces the collected rows with the rows of objects. Rows that
// fail are logged and left out.
func (r *Report) CollectData(ctx context.Context, objects []any) error {
	r.state = StateCollecting
	lookups, err := r.FieldLookups(ctx)
	if err != nil {
		r.state = StateErrored
		return err
	}

	rows, errs := collect(ctx, objects, lookups, r.def.RowData)
	r.data = rows
	r.rowErrors = nil
	for _, e := range errs {
		if e.Index < 0 {
			r.state = StateErrored
			return e.Err
		}
		r.logger.Error("Failed to collect row",
			zap.Int("row", e.Index),
			zap.String("column", e.Column),
			zap.Error(e.Err))
		r.rowErrors = append(r.rowErrors, e)
	}
	return nil
}

// Render serializes the collected rows.
func (r *Report) Render(ctx context.Context) ([]byte, error) {
	r.state = StateSerializing
	columns, err := r.Columns(ctx)
	if err != nil {
		r.state = StateErrored
		return nil, err
	}
	out, err := r.def.Renderer.Render(r.data, columns, r.logger)
	if err != nil {
		r.state = StateErrored
		return nil, fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// Filename is <slug>-<timestamp>.<ext>.
func (r *Report) Filename(now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", r.def.ActionName(), now.Format(filenameTimeLayout), r.def.Renderer.Extension())
}

// Run collects, renders and stores the selection.
func (r *Report) Run(ctx context.Context, sel record.Selection) (*SavedReport, error) {
	if r.deps.Store == nil {
		return nil, fmt.Errorf("report %q has no store", r.def.Name)
	}

	records, err := sel.Records(ctx)
	if err != nil {
		r.state = StateErrored
		return nil, fmt.Errorf("load records: %w", err)
	}
	objects := make([]any, len(records))
	for i, rec := range records {
		objects[i] = rec
	}

	if err := r.CollectData(ctx, objects); err != nil {
		return nil, err
	}
	out, err := r.Render(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := r.deps.Store.Save(ctx, SaveRequest{
		Report:      r.def.Name,
		Module:      r.params.ModelName,
		UserID:      r.params.UserID,
		TenantID:    r.params.TenantID,
		FileName:    r.Filename(r.deps.Now()),
		ContentType: r.def.Renderer.ContentType(),
		Data:        out,
		RowCount:    len(r.data),
		SkippedRows: len(r.rowErrors),
	})
	if err != nil {
		r.state = StateErrored
		return nil, fmt.Errorf("save report: %w", err)
	}
	r.state = StatePersisted
	return saved, nil
}
