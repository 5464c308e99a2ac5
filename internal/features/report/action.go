package report

import (
	"context"
	"fmt"
	"html"

	"crm-reports/internal/features/admin"
)

const (
	failureMessage = "Your report could not be compiled. Please check the error logs or contact your administrator."
	queuedMessage  = "Your report has been queued. You will be notified when it is ready."
	emptyMessage   = "No records match the selection, nothing was exported."
)

func successMessage(section, url string) string {
	return fmt.Sprintf(
		"Your report has completed and is available within the <em>%s</em> section of the admin. Or, you can download it directly <a href='%s'>here</a>",
		html.EscapeString(section), html.EscapeString(url),
	)
}

// Invoker starts a report run for an admin selection.
type Invoker interface {
	Invoke(ctx context.Context, def *Definition, req admin.ActionRequest) (*Outcome, error)
}

// reportAction exposes a Definition as an admin bulk action.
type reportAction struct {
	def     *Definition
	invoker Invoker
	section string
}

func NewAction(def *Definition, invoker Invoker, section string) admin.Action {
	return &reportAction{def: def, invoker: invoker, section: section}
}

func (a *reportAction) Name() string { return a.def.ActionName() }

func (a *reportAction) Description() string {
	if a.def.Description != "" {
		return a.def.Description
	}
	return a.def.Name
}

func (a *reportAction) Execute(ctx context.Context, req admin.ActionRequest) (*admin.ActionResult, error) {
	outcome, err := a.invoker.Invoke(ctx, a.def, req)
	if err != nil {
		return nil, err
	}

	var msg admin.Message
	switch {
	case outcome.Reason == ReasonLimit:
		msg = admin.Message{Text: limitMessage(a.def.MaxRecords), Level: "warning"}
	case outcome.Reason == ReasonEmpty:
		msg = admin.Message{Text: emptyMessage, Level: "warning"}
	case outcome.Reason == ReasonFailed:
		msg = admin.Message{Text: failureMessage, Level: "error"}
	case outcome.Queued:
		msg = admin.Message{Text: queuedMessage, Level: "info"}
	case outcome.Saved != nil:
		msg = admin.Message{Text: successMessage(a.section, outcome.Saved.URL), Level: "success", Safe: true}
	}
	return &admin.ActionResult{Messages: []admin.Message{msg}, Data: outcome}, nil
}
