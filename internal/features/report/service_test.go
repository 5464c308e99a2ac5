package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/features/admin"
	"crm-reports/internal/features/notification"
	"crm-reports/internal/features/record"
	"crm-reports/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type harness struct {
	registry *Registry
	selector *fakeSelector
	store    *fakeStore
	notifier *fakeNotifier
	queue    *fakeQueue
	runner   *Runner
	service  *ReportServiceImpl
}

func newHarness(t *testing.T, defs ...*Definition) *harness {
	t.Helper()
	h := &harness{
		registry: NewRegistry(),
		selector: &fakeSelector{records: leads(3)},
		store:    &fakeStore{},
		notifier: &fakeNotifier{},
		queue:    &fakeQueue{},
	}
	for _, def := range defs {
		require.NoError(t, h.registry.Register("leads", def))
	}
	m := metrics.NewMetrics()
	h.runner = &Runner{
		registry: h.registry,
		selector: h.selector,
		fields:   fakeFields{"leads": {"id", "name"}},
		store:    h.store,
		notifier: h.notifier,
		identity: fakeIdentity{},
		metrics:  m,
		section:  "Saved Reports",
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	h.service = &ReportServiceImpl{
		registry: h.registry,
		runner:   h.runner,
		queue:    h.queue,
		store:    h.store,
		metrics:  m,
		appLabel: "crm",
		logger:   zap.NewNop(),
	}
	return h
}

func (h *harness) request(t *testing.T, ids ...string) admin.ActionRequest {
	t.Helper()
	sel, err := h.selector.Select(context.Background(), record.Query{Module: "leads", TenantID: "t1", IDs: ids})
	require.NoError(t, err)
	return admin.ActionRequest{UserID: "u1", TenantID: "t1", Module: "leads", Selection: sel}
}

// requestWhere selects by filter instead of ids.
func (h *harness) requestWhere(t *testing.T, filter map[string]any) admin.ActionRequest {
	t.Helper()
	sel, err := h.selector.Select(context.Background(), record.Query{Module: "leads", TenantID: "t1", Filter: filter})
	require.NoError(t, err)
	return admin.ActionRequest{UserID: "u1", TenantID: "t1", Module: "leads", Selection: sel}
}

func TestInvokeRunsInline(t *testing.T) {
	def := NewDefinition("Leads Export", WithoutPrefetch())
	h := newHarness(t, def)

	outcome, err := h.service.Invoke(context.Background(), def, h.request(t, "lead-1", "lead-3"))
	require.NoError(t, err)

	assert.True(t, outcome.Ran)
	require.NotNil(t, outcome.Saved)
	assert.Equal(t, 2, outcome.Saved.RowCount)
	assert.Equal(t, "Id,Name\r\nlead-1,Lead 1\r\nlead-3,Lead 3\r\n", string(h.store.data[outcome.Saved.FileKey]))

	last := h.selector.queries[len(h.selector.queries)-1]
	assert.Equal(t, []string{"lead-1", "lead-3"}, last.IDs)
	assert.False(t, last.PrefetchRelated)
	assert.Equal(t, "t1", last.TenantID)

	require.Len(t, h.notifier.messages, 1)
	msg := h.notifier.messages[0]
	assert.Equal(t, notification.NotificationTypeSuccess, msg.Type)
	assert.True(t, msg.Safe)
	assert.Contains(t, msg.Text, "<em>Saved Reports</em>")
	assert.Contains(t, msg.Text, "href='"+outcome.Saved.URL+"'")
	assert.Equal(t, []string{"u1@example.com"}, msg.Recipients)
}

func TestInvokeOverLimit(t *testing.T) {
	def := NewDefinition("Capped", WithMaxRecords(2))
	h := newHarness(t, def)

	outcome, err := h.service.Invoke(context.Background(), def, h.request(t))
	require.NoError(t, err)

	assert.False(t, outcome.Ran)
	assert.Equal(t, ReasonLimit, outcome.Reason)
	assert.Empty(t, h.store.saved)
	assert.Empty(t, h.queue.tasks)
	assert.Empty(t, h.notifier.messages)
}

func TestInvokeQueuesAsyncReports(t *testing.T) {
	def := NewDefinition("Background", WithAsync())
	h := newHarness(t, def)

	outcome, err := h.service.Invoke(context.Background(), def, h.request(t, "lead-2"))
	require.NoError(t, err)

	assert.True(t, outcome.Queued)
	require.Len(t, h.queue.tasks, 1)
	task := h.queue.tasks[0]
	assert.Equal(t, outcome.TaskID, task.ID)
	assert.Equal(t, Params{
		Report:    "Background",
		UserID:    "u1",
		TenantID:  "t1",
		AppLabel:  "crm",
		ModelName: "leads",
		Query:     record.Query{Module: "leads", TenantID: "t1", IDs: []string{"lead-2"}, ByID: true, PrefetchRelated: true},
	}, task.Params)
	assert.Empty(t, h.store.saved)
}

func TestInvokeFilterMatchingNothingExportsNothing(t *testing.T) {
	inline := NewDefinition("Inline")
	async := NewDefinition("Queued", WithAsync())
	h := newHarness(t, inline, async)

	for _, def := range []*Definition{inline, async} {
		outcome, err := h.service.Invoke(context.Background(), def, h.requestWhere(t, map[string]any{"name": "Nobody"}))
		require.NoError(t, err)
		assert.False(t, outcome.Ran, def.Name)
		assert.Equal(t, ReasonEmpty, outcome.Reason, def.Name)
	}
	assert.Empty(t, h.store.saved)
	assert.Empty(t, h.queue.tasks)
	assert.Empty(t, h.notifier.messages)

	result, err := NewAction(inline, h.service, "").Execute(context.Background(), h.requestWhere(t, map[string]any{"name": "Nobody"}))
	require.NoError(t, err)
	assert.Equal(t, "warning", result.Messages[0].Level)
	assert.Equal(t, emptyMessage, result.Messages[0].Text)
}

func TestInvokeFilterSelectionIsPinnedToIDs(t *testing.T) {
	def := NewDefinition("Queued", WithAsync())
	h := newHarness(t, def)

	outcome, err := h.service.Invoke(context.Background(), def, h.requestWhere(t, map[string]any{"name": "Lead 2"}))
	require.NoError(t, err)
	assert.True(t, outcome.Queued)

	require.Len(t, h.queue.tasks, 1)
	q := h.queue.tasks[0].Params.Query
	assert.Nil(t, q.Filter)
	assert.Equal(t, []string{"lead-2"}, q.IDs)
	assert.True(t, q.ByID)
}

func TestInvokeRechecksLimitAgainstIDs(t *testing.T) {
	def := NewDefinition("Capped", WithMaxRecords(2))
	h := newHarness(t, def)
	req := h.request(t)
	req.Selection = &recountedSelection{fakeSelection: req.Selection.(*fakeSelection), count: 1}

	outcome, err := h.service.Invoke(context.Background(), def, req)
	require.NoError(t, err)

	assert.False(t, outcome.Ran)
	assert.Equal(t, ReasonLimit, outcome.Reason)
	assert.Empty(t, h.store.saved)
}

func TestRunnerExplicitEmptySelectionStaysEmpty(t *testing.T) {
	def := NewDefinition("Leads Export")
	h := newHarness(t, def)

	data, err := json.Marshal(NewTask(Params{Report: "Leads Export", ModelName: "leads", UserID: "u1", TenantID: "t1",
		Query: record.Query{Module: "leads", TenantID: "t1"}.ByIDs(nil)}))
	require.NoError(t, err)
	var task Task
	require.NoError(t, json.Unmarshal(data, &task))

	saved, err := h.runner.Execute(context.Background(), task.Params)
	require.NoError(t, err)
	assert.Zero(t, saved.RowCount)
	assert.Empty(t, h.store.data[saved.FileKey])

	last := h.selector.queries[len(h.selector.queries)-1]
	assert.True(t, last.Explicit())
	assert.Empty(t, last.IDs)
}

func TestInvokeReportsFailureInOutcome(t *testing.T) {
	def := NewDefinition("Broken")
	h := newHarness(t, def)
	h.store.err = errors.New("bucket gone")

	outcome, err := h.service.Invoke(context.Background(), def, h.request(t))
	require.NoError(t, err)

	assert.True(t, outcome.Ran)
	assert.Equal(t, ReasonFailed, outcome.Reason)
	require.Len(t, h.notifier.messages, 1)
	assert.Equal(t, failureMessage, h.notifier.messages[0].Text)
	assert.Equal(t, notification.NotificationTypeError, h.notifier.messages[0].Type)
}

func TestRunnerRecoversPanics(t *testing.T) {
	def := NewDefinition("Explodes", WithFieldLookups(func(ctx context.Context, r *Report) ([]FieldLookup, error) {
		panic("lookup table missing")
	}))
	h := newHarness(t, def)

	saved, err := h.runner.Execute(context.Background(), Params{Report: "Explodes", ModelName: "leads", UserID: "u1",
		Query: record.Query{Module: "leads"}})

	assert.Nil(t, saved)
	assert.ErrorContains(t, err, "lookup table missing")
	require.Len(t, h.notifier.messages, 1)
	assert.Equal(t, failureMessage, h.notifier.messages[0].Text)
	assert.Empty(t, h.store.saved)
}

func TestRunnerUnknownReport(t *testing.T) {
	h := newHarness(t)

	_, err := h.runner.Execute(context.Background(), Params{Report: "Nope", ModelName: "leads"})
	assert.ErrorIs(t, err, ErrNotRegistered)
	require.Len(t, h.notifier.messages, 1)
}

func TestRunnerScopesContextToTenant(t *testing.T) {
	var seen any
	def := NewDefinition("Tenant", WithFieldLookups(func(ctx context.Context, r *Report) ([]FieldLookup, error) {
		seen = ctx.Value(models.TenantIDKey)
		return []FieldLookup{{Column: "Name", Spec: Attr("name")}}, nil
	}))
	h := newHarness(t, def)

	_, err := h.runner.Execute(context.Background(), Params{Report: "tenant", ModelName: "leads", TenantID: "t9",
		Query: record.Query{Module: "leads"}})
	require.NoError(t, err)
	assert.Equal(t, "t9", seen)
}

func TestRunnerResolvesGlobalReports(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.registry.Register("", NewDefinition("Everywhere")))

	saved, err := h.runner.Execute(context.Background(), Params{Report: "Everywhere", ModelName: "leads",
		Query: record.Query{Module: "leads"}})
	require.NoError(t, err)
	assert.Equal(t, 3, saved.RowCount)
}

func TestReportActionMessages(t *testing.T) {
	capped := NewDefinition("Capped", WithMaxRecords(1))
	async := NewDefinition("Later", WithAsync())
	plain := NewDefinition("Now", WithDescription("Export right away"))
	h := newHarness(t, capped, async, plain)

	tests := []struct {
		def   *Definition
		level string
		text  string
	}{
		{capped, "warning", "This report is limited to 1 records."},
		{async, "info", queuedMessage},
		{plain, "success", "Your report has completed"},
	}
	for _, tt := range tests {
		t.Run(tt.def.Name, func(t *testing.T) {
			action := NewAction(tt.def, h.service, "Saved Reports")
			assert.Equal(t, tt.def.ActionName(), action.Name())

			result, err := action.Execute(context.Background(), h.request(t))
			require.NoError(t, err)
			require.Len(t, result.Messages, 1)
			assert.Equal(t, tt.level, result.Messages[0].Level)
			assert.Contains(t, result.Messages[0].Text, tt.text)
		})
	}

	assert.Equal(t, "Export right away", NewAction(plain, h.service, "").Description())
	assert.Equal(t, "Later", NewAction(async, h.service, "").Description())
}

func TestCleanupRemovesExpired(t *testing.T) {
	h := newHarness(t)
	old := &SavedReport{FileKey: "reports/old.csv"}
	h.store.data = map[string][]byte{old.FileKey: []byte("x")}
	h.service.repo = &stubSavedRepo{expired: []SavedReport{*old}}

	removed, err := h.service.Cleanup(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, h.store.data)
}

type stubSavedRepo struct {
	SavedReportRepository
	expired []SavedReport
	tenants []string
}

func (r *stubSavedRepo) Get(ctx context.Context, tenantID, id string) (*SavedReport, error) {
	r.tenants = append(r.tenants, tenantID)
	return nil, ErrSavedReportNotFound
}

func (r *stubSavedRepo) FindOlderThan(ctx context.Context, cutoff time.Time) ([]SavedReport, error) {
	return r.expired, nil
}

func TestSavedReportLookupsUseContextTenant(t *testing.T) {
	h := newHarness(t)
	repo := &stubSavedRepo{}
	h.service.repo = repo
	ctx := context.WithValue(context.Background(), models.TenantIDKey, "t7")

	_, err := h.service.GetSaved(ctx, "r1")
	assert.ErrorIs(t, err, ErrSavedReportNotFound)
	_, _, err = h.service.Download(ctx, "r1")
	assert.ErrorIs(t, err, ErrSavedReportNotFound)
	assert.ErrorIs(t, h.service.DeleteSaved(context.Background(), "r1"), ErrSavedReportNotFound)

	assert.Equal(t, []string{"t7", "t7", ""}, repo.tenants)
}

func TestSavedReportQueryIsTenantScoped(t *testing.T) {
	id := primitive.NewObjectID()
	query, err := byID("t1", id.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": id, "tenant_id": "t1"}, query)

	_, err = byID("t1", "not-an-id")
	assert.ErrorIs(t, err, ErrSavedReportNotFound)
}
