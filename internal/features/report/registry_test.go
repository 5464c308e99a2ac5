package report

import (
	"context"
	"errors"
	"testing"

	"crm-reports/internal/features/admin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("leads", NewDefinition("Export")))
	require.NoError(t, reg.Register("deals", NewDefinition("Export")))
	require.NoError(t, reg.Register("leads", NewDefinition("Summary")))
	require.NoError(t, reg.Register("", NewDefinition("Everything")))

	err := reg.Register("leads", NewDefinition("export"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Equal(t, []string{"leads", "deals"}, reg.Models())
	assert.Len(t, reg.For("leads"), 2)
	assert.Equal(t, "Everything", reg.Globals()[0].Name)

	def, err := reg.Lookup("leads", "summary")
	require.NoError(t, err)
	assert.Equal(t, "Summary", def.Name)

	_, err = reg.Lookup("deals", "Summary")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistryRejectsInvalidDefinitions(t *testing.T) {
	reg := NewRegistry()

	dup := NewDefinition("Dup", WithLookups(
		FieldLookup{Column: "A", Spec: Attr("a")},
		FieldLookup{Column: "A", Spec: Attr("b")},
	))
	assert.ErrorIs(t, reg.Register("leads", dup), ErrDuplicateColumn)

	assert.ErrorIs(t, reg.Register("leads", NewDefinition("Bad", WithLookups(FieldLookup{Column: "A", Spec: Callback(nil)}))), ErrInvalidLookup)
	assert.ErrorIs(t, reg.Register("leads", NewDefinition("Fields", WithFields("x", "x"))), ErrDuplicateColumn)
	assert.Error(t, reg.Register("leads", NewDefinition("!!!")))
	assert.Error(t, reg.Register("leads", NewDefinition("Negative", WithMaxRecords(-1))))
	assert.Error(t, reg.Register("leads", nil))
	assert.Empty(t, reg.Models())
}

func TestRegistrySealAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("leads", NewDefinition("Export", WithFields("A"))))

	snap := reg.Snapshot()
	snap["leads"][0].Fields[0] = "mutated"
	def, _ := reg.Lookup("leads", "Export")
	assert.Equal(t, []string{"A"}, def.Fields)

	reg.Seal()
	assert.True(t, reg.Sealed())
	assert.ErrorIs(t, reg.Register("leads", NewDefinition("Late")), ErrRegistrySealed)
}

func TestRegistryViews(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("leads", NewDefinition("Export",
		WithLookups(FieldLookup{Column: "Name", Spec: Attr("name")}),
		WithRenderer(XLSXRenderer{}))))
	require.NoError(t, reg.Register("", NewDefinition("Global", WithMaxRecords(10))))

	views := reg.Views()
	require.Len(t, views, 2)
	assert.Equal(t, DefinitionView{Name: "Global", Action: "global", MaxRecords: 10, Format: "csv"}, views[0])
	assert.Equal(t, DefinitionView{Model: "leads", Name: "Export", Action: "export", Columns: []string{"Name"}, Format: "xlsx"}, views[1])
}

type plainApp struct{ label string }

func (a plainApp) Label() string { return a.label }

type reportsApp struct {
	plainApp
	register func(*Registry) error
	calls    int
}

func (a *reportsApp) RegisterReports(reg *Registry) error {
	a.calls++
	return a.register(reg)
}

type nopInvoker struct{}

func (nopInvoker) Invoke(ctx context.Context, def *Definition, req admin.ActionRequest) (*Outcome, error) {
	return &Outcome{Ran: true}, nil
}

type otherContainer struct{}

func (otherContainer) Actions() []admin.Action { return nil }

func actionNames(actions []admin.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name()
	}
	return out
}

func TestDiscoverWiresActions(t *testing.T) {
	site := admin.NewSite(zap.NewNop())
	list := admin.NewActionList()
	fixed := admin.FixedActions{}
	require.NoError(t, site.Register(&admin.ModelAdmin{Module: "leads", Actions: list}))
	require.NoError(t, site.Register(&admin.ModelAdmin{Module: "deals", Actions: fixed}))
	require.NoError(t, site.Register(&admin.ModelAdmin{Module: "contacts"}))
	require.NoError(t, site.Register(&admin.ModelAdmin{Module: "tickets", Actions: otherContainer{}}))

	app := &reportsApp{plainApp: plainApp{"crm"}, register: func(reg *Registry) error {
		for _, model := range []string{"leads", "deals", "contacts", "tickets", "unknown"} {
			if err := reg.Register(model, NewDefinition("Export")); err != nil {
				return err
			}
		}
		return reg.Register("", NewDefinition("Audit Trail"))
	}}

	reg := NewRegistry()
	d := NewDiscovery(reg, site, nopInvoker{}, "Saved Reports", zap.NewNop())
	require.NoError(t, d.Discover(context.Background(), []admin.App{plainApp{"billing"}, app}))

	assert.Equal(t, []string{"export"}, actionNames(list.Actions()))
	assert.Empty(t, fixed)
	for _, module := range []string{"leads", "deals", "contacts"} {
		got, err := site.ActionsFor(module)
		require.NoError(t, err)
		assert.Equal(t, []string{"export", "audit-trail"}, actionNames(got), module)
	}
	tickets, err := site.ActionsFor("tickets")
	require.NoError(t, err)
	assert.Equal(t, []string{"audit-trail"}, actionNames(tickets))
	assert.True(t, reg.Sealed())

	// discovery runs once
	require.NoError(t, d.Discover(context.Background(), []admin.App{app}))
	assert.Equal(t, 1, app.calls)
	assert.Equal(t, []string{"export"}, actionNames(list.Actions()))
}

func TestDiscoverPropagatesProviderErrors(t *testing.T) {
	boom := errors.New("bad report config")
	app := &reportsApp{plainApp: plainApp{"crm"}, register: func(*Registry) error { return boom }}

	d := NewDiscovery(NewRegistry(), admin.NewSite(zap.NewNop()), nopInvoker{}, "", zap.NewNop())
	err := d.Discover(context.Background(), []admin.App{app})

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, d.Discover(context.Background(), nil), boom)
}
