// Package crm registers the built-in CRM modules with the admin site and
// ships their reports.
package crm

import (
	"fmt"

	"crm-reports/internal/features/admin"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
)

const Label = "crm"

type App struct{}

func New() *App {
	return &App{}
}

func (a *App) Label() string { return Label }

// RegisterAdmin exposes leads, deals, contacts and accounts. Each module uses
// a different action container so reports can be attached to any of them.
func (a *App) RegisterAdmin(site *admin.Site) error {
	admins := []*admin.ModelAdmin{
		{Module: "leads", Label: "Leads", Actions: admin.NewActionList()},
		{Module: "deals", Label: "Deals", Actions: admin.FixedActions{}},
		{Module: "contacts", Label: "Contacts"},
		{Module: "accounts", Label: "Accounts", Actions: admin.NewActionList()},
	}
	for _, ma := range admins {
		if err := site.Register(ma); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) RegisterReports(reg *report.Registry) error {
	// either name part may be missing on imported records
	fullName, err := report.Script(`(is_undefined(record.first_name) ? "" : record.first_name) +
		(is_undefined(record.first_name) || is_undefined(record.last_name) ? "" : " ") +
		(is_undefined(record.last_name) ? "" : record.last_name)`)
	if err != nil {
		return err
	}

	defs := []struct {
		module string
		def    *report.Definition
	}{
		{"leads", report.NewDefinition("Leads - Export Selected",
			report.WithDescription("Every field of the selected leads"),
		)},
		{"leads", report.NewDefinition("Lead Owners",
			report.WithDescription("Leads with their assigned owner"),
			report.WithLookups(
				report.Lookup("Name", fullName),
				report.Lookup("Company", "company"),
				report.Lookup("Owner", "owner.name"),
				report.Lookup("Owner Email", "owner.email"),
				report.Lookup("Status", "status"),
			),
		)},
		{"deals", report.NewDefinition("Pipeline",
			report.WithDescription("Open deals with weighted amounts"),
			report.WithMaxRecords(5000),
			report.WithRenderer(report.XLSXRenderer{SheetName: "Pipeline"}),
			report.WithLookups(
				report.Lookup("Deal", "name"),
				report.Lookup("Account", "account.name"),
				report.Lookup("Stage", "stage"),
				report.Lookup("Amount", "amount"),
				report.Lookup("Probability", "probability"),
				report.Lookup("Weighted", report.Callback(weightedAmount)),
				report.Lookup("Close Date", "close_date"),
			),
		)},
		{"deals", report.NewDefinition("Deal Sheet",
			report.WithMaxRecords(500),
			report.WithRenderer(report.PDFRenderer{Title: "Deal Sheet"}),
			report.WithLookups(
				report.Lookup("Deal", "name"),
				report.Lookup("Stage", "stage"),
				report.Lookup("Amount", "amount"),
			),
		)},
		{"contacts", report.NewDefinition("Contacts Directory",
			report.WithDescription("Tab separated UTF-16 export for spreadsheet imports"),
			report.WithRenderer(report.CSVRenderer{Comma: '\t', UTF16: true}),
			report.WithAsync(),
			report.WithLookups(
				report.Lookup("Name", fullName),
				report.Lookup("Email", "email"),
				report.Lookup("Phone", "phone"),
				report.Lookup("Account", "account.name"),
			),
		)},
		{"", report.NewDefinition("Export to Excel",
			report.WithDescription("All fields of the selection as a spreadsheet"),
			report.WithMaxRecords(10000),
			report.WithRenderer(report.XLSXRenderer{}),
		)},
		{"", report.NewDefinition("Export to XML",
			report.WithMaxRecords(10000),
			report.WithRenderer(report.XMLRenderer{}),
			report.WithoutPrefetch(),
		)},
	}
	for _, d := range defs {
		if err := reg.Register(d.module, d.def); err != nil {
			return fmt.Errorf("%s: %w", d.def.Name, err)
		}
	}
	return nil
}

// weightedAmount is amount scaled by the deal's win probability in percent.
func weightedAmount(obj any) (any, error) {
	rec, ok := obj.(record.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected object %T", obj)
	}
	amount, ok := number(rec["amount"])
	if !ok {
		return nil, nil
	}
	probability, ok := number(rec["probability"])
	if !ok {
		return nil, nil
	}
	return amount * probability / 100, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
