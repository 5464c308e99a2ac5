package admin

import (
	"context"

	"crm-reports/internal/features/record"
)

// ActionRequest carries one bulk-action invocation from the admin surface.
type ActionRequest struct {
	UserID    string
	TenantID  string
	Module    string
	Selection record.Selection
}

// Message is shown to the invoking user. Safe messages contain markup.
type Message struct {
	Text  string `json:"text"`
	Level string `json:"level"`
	Safe  bool   `json:"safe"`
}

type ActionResult struct {
	Messages []Message `json:"messages"`
	Data     any       `json:"data,omitempty"`
}

// Action is a bulk operation offered for a selection of records.
type Action interface {
	Name() string
	Description() string
	Execute(ctx context.Context, req ActionRequest) (*ActionResult, error)
}

// ActionContainer is the action collection attached to a ModelAdmin.
type ActionContainer interface {
	Actions() []Action
}

// ActionList is a growable container; appends mutate it in place.
type ActionList struct {
	items []Action
}

func NewActionList(actions ...Action) *ActionList {
	return &ActionList{items: append([]Action(nil), actions...)}
}

func (l *ActionList) Actions() []Action {
	return append([]Action(nil), l.items...)
}

func (l *ActionList) Append(a Action) {
	l.items = append(l.items, a)
}

// FixedActions is immutable; With returns an extended copy.
type FixedActions []Action

func (f FixedActions) Actions() []Action {
	return append([]Action(nil), f...)
}

func (f FixedActions) With(a Action) FixedActions {
	out := make(FixedActions, 0, len(f)+1)
	out = append(out, f...)
	return append(out, a)
}

func hasAction(actions []Action, name string) bool {
	for _, a := range actions {
		if a.Name() == name {
			return true
		}
	}
	return false
}
