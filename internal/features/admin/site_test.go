package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAction struct {
	name string
	runs int
}

func (a *stubAction) Name() string        { return a.name }
func (a *stubAction) Description() string { return "stub " + a.name }
func (a *stubAction) Execute(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	a.runs++
	return &ActionResult{Messages: []Message{{Text: a.name + " ran on " + req.Module}}}, nil
}

type customContainer struct{}

func (customContainer) Actions() []Action { return nil }

func names(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name()
	}
	return out
}

func TestAddModelActionContainers(t *testing.T) {
	site := NewSite(zap.NewNop())
	list := NewActionList(&stubAction{name: "delete"})
	fixed := FixedActions{&stubAction{name: "archive"}}

	require.NoError(t, site.Register(&ModelAdmin{Module: "leads", Actions: list}))
	require.NoError(t, site.Register(&ModelAdmin{Module: "deals", Actions: fixed}))
	require.NoError(t, site.Register(&ModelAdmin{Module: "contacts"}))
	require.NoError(t, site.Register(&ModelAdmin{Module: "tickets", Actions: customContainer{}}))

	export := &stubAction{name: "export"}
	for _, module := range []string{"leads", "deals", "contacts"} {
		added, err := site.AddModelAction(module, export)
		require.NoError(t, err)
		assert.True(t, added, module)
	}

	// ActionList grows in place
	assert.Equal(t, []string{"delete", "export"}, names(list.Actions()))
	// FixedActions is replaced, the caller's value is untouched
	assert.Equal(t, []string{"archive"}, names(fixed.Actions()))
	got, err := site.ActionsFor("deals")
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", "export"}, names(got))
	// missing container becomes a fresh list scoped to that module
	got, err = site.ActionsFor("contacts")
	require.NoError(t, err)
	assert.Equal(t, []string{"export"}, names(got))

	_, err = site.AddModelAction("tickets", export)
	assert.True(t, errors.Is(err, ErrUnsupportedContainer))

	_, err = site.AddModelAction("unknown", export)
	assert.True(t, errors.Is(err, ErrNotRegistered))
}

func TestAddModelActionSkipsDuplicates(t *testing.T) {
	site := NewSite(zap.NewNop())
	require.NoError(t, site.Register(&ModelAdmin{Module: "leads"}))

	added, err := site.AddModelAction("leads", &stubAction{name: "export"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = site.AddModelAction("leads", &stubAction{name: "export"})
	require.NoError(t, err)
	assert.False(t, added)

	got, _ := site.ActionsFor("leads")
	assert.Len(t, got, 1)
}

func TestGlobalActionsAppendAfterModelActions(t *testing.T) {
	site := NewSite(zap.NewNop())
	require.NoError(t, site.Register(&ModelAdmin{Module: "leads", Actions: NewActionList(&stubAction{name: "export"})}))

	assert.True(t, site.AddAction(&stubAction{name: "audit"}))
	assert.False(t, site.AddAction(&stubAction{name: "audit"}))
	site.AddAction(&stubAction{name: "export"})

	got, err := site.ActionsFor("leads")
	require.NoError(t, err)
	assert.Equal(t, []string{"export", "audit"}, names(got))

	a, err := site.Action("leads", "audit")
	require.NoError(t, err)
	assert.Equal(t, "audit", a.Name())

	_, err = site.Action("leads", "missing")
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	site := NewSite(zap.NewNop())
	require.NoError(t, site.Register(&ModelAdmin{Module: "leads"}))
	assert.True(t, errors.Is(site.Register(&ModelAdmin{Module: "leads"}), ErrAlreadyRegistered))
	assert.Error(t, site.Register(&ModelAdmin{}))
	assert.Equal(t, []string{"leads"}, site.Modules())
}

type adminApp struct {
	label string
	err   error
}

func (a adminApp) Label() string { return a.label }
func (a adminApp) RegisterAdmin(site *Site) error {
	if a.err != nil {
		return a.err
	}
	return site.Register(&ModelAdmin{Module: a.label})
}

type plainApp struct{}

func (plainApp) Label() string { return "plain" }

func TestAutodiscover(t *testing.T) {
	site := NewSite(zap.NewNop())
	require.NoError(t, site.Autodiscover([]App{adminApp{label: "leads"}, plainApp{}}))
	assert.True(t, site.IsRegistered("leads"))

	boom := errors.New("boom")
	err := NewSite(zap.NewNop()).Autodiscover([]App{adminApp{label: "x", err: boom}})
	assert.True(t, errors.Is(err, boom))
}
