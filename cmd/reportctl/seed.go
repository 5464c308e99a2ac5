package main

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/database"
	"crm-reports/internal/features/module"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var seedTenant string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the CRM demo modules and records for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, err := primitive.ObjectIDFromHex(seedTenant)
		if err != nil {
			return fmt.Errorf("invalid tenant id: %w", err)
		}

		var mongodb *database.MongodbDB
		return withApp(cmd.Context(), func(ctx context.Context) error {
			return seed(ctx, cmd, mongodb, tenantID)
		}, &mongodb)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "", "tenant id (hex)")
	_ = seedCmd.MarkFlagRequired("tenant")
}

func lookup(target, label string) *module.LookupDef {
	return &module.LookupDef{LookupModule: target, LookupLabel: label, ValueField: "_id"}
}

var demoModules = []module.Module{
	{
		Name:  "team_members",
		Label: "Team Members",
		Fields: []module.ModuleField{
			{Name: "name", Label: "Name", Type: module.FieldTypeText, Required: true},
			{Name: "email", Label: "Email", Type: module.FieldTypeEmail, Required: true},
		},
	},
	{
		Name:  "accounts",
		Label: "Accounts",
		Fields: []module.ModuleField{
			{Name: "name", Label: "Account Name", Type: module.FieldTypeText, Required: true},
			{Name: "industry", Label: "Industry", Type: module.FieldTypeSelect},
			{Name: "website", Label: "Website", Type: module.FieldTypeText},
		},
	},
	{
		Name:  "leads",
		Label: "Leads",
		Fields: []module.ModuleField{
			{Name: "first_name", Label: "First Name", Type: module.FieldTypeText, Required: true},
			{Name: "last_name", Label: "Last Name", Type: module.FieldTypeText, Required: true},
			{Name: "company", Label: "Company", Type: module.FieldTypeText},
			{Name: "status", Label: "Status", Type: module.FieldTypeSelect},
			{Name: "owner", Label: "Owner", Type: module.FieldTypeLookup, Lookup: lookup("team_members", "name")},
		},
	},
	{
		Name:  "contacts",
		Label: "Contacts",
		Fields: []module.ModuleField{
			{Name: "first_name", Label: "First Name", Type: module.FieldTypeText, Required: true},
			{Name: "last_name", Label: "Last Name", Type: module.FieldTypeText, Required: true},
			{Name: "email", Label: "Email", Type: module.FieldTypeEmail},
			{Name: "phone", Label: "Phone", Type: module.FieldTypeText},
			{Name: "account", Label: "Account", Type: module.FieldTypeLookup, Lookup: lookup("accounts", "name")},
		},
	},
	{
		Name:  "deals",
		Label: "Deals",
		Fields: []module.ModuleField{
			{Name: "name", Label: "Deal Name", Type: module.FieldTypeText, Required: true},
			{Name: "account", Label: "Account", Type: module.FieldTypeLookup, Lookup: lookup("accounts", "name")},
			{Name: "stage", Label: "Stage", Type: module.FieldTypeSelect},
			{Name: "amount", Label: "Amount", Type: module.FieldTypeCurrency},
			{Name: "probability", Label: "Probability (%)", Type: module.FieldTypeNumber},
			{Name: "close_date", Label: "Close Date", Type: module.FieldTypeDate},
		},
	},
}

func seed(ctx context.Context, cmd *cobra.Command, mongodb *database.MongodbDB, tenantID primitive.ObjectID) error {
	out := cmd.OutOrStdout()
	now := time.Now()

	col := mongodb.DB.Collection("entities")
	for _, mod := range demoModules {
		count, err := col.CountDocuments(ctx, bson.M{"name": mod.Name, "tenant_id": tenantID})
		if err != nil {
			return err
		}
		if count > 0 {
			fmt.Fprintf(out, "Module %s already exists. Skipping.\n", mod.Name)
			continue
		}

		mod.ID = primitive.NewObjectID()
		mod.TenantID = tenantID
		mod.IsSystem = true
		mod.CreatedAt = now
		mod.UpdatedAt = now
		if _, err := col.InsertOne(ctx, mod); err != nil {
			return fmt.Errorf("create module %s: %w", mod.Name, err)
		}
		fmt.Fprintf(out, "Created module: %s\n", mod.Name)
	}

	records := mongodb.DB.Collection("entity_records")
	insert := func(entity string, data map[string]any) (primitive.ObjectID, error) {
		rec := models.EntityRecord{
			ID:        primitive.NewObjectID(),
			TenantID:  tenantID,
			Product:   models.ProductCRM,
			Entity:    entity,
			Data:      data,
			CreatedBy: "seed",
			UpdatedBy: "seed",
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := records.InsertOne(ctx, rec)
		return rec.ID, err
	}

	sam, err := insert("team_members", map[string]any{"name": "Sam Carter", "email": "sam@example.com"})
	if err != nil {
		return err
	}
	acme, err := insert("accounts", map[string]any{"name": "Acme Corp", "industry": "Manufacturing", "website": "https://acme.example"})
	if err != nil {
		return err
	}

	demo := []struct {
		entity string
		data   map[string]any
	}{
		{"leads", map[string]any{"first_name": "Ada", "last_name": "Lovelace", "company": "Analytical", "status": "New", "owner": sam.Hex()}},
		{"leads", map[string]any{"first_name": "Grace", "last_name": "Hopper", "company": "Cobol Inc", "status": "Qualified", "owner": sam.Hex()}},
		{"contacts", map[string]any{"first_name": "Wile", "last_name": "Coyote", "email": "wile@acme.example", "phone": "555-0100", "account": acme.Hex()}},
		{"deals", map[string]any{"name": "Rocket skates", "account": acme.Hex(), "stage": "Proposal", "amount": 12000.0, "probability": 40, "close_date": now.AddDate(0, 1, 0)}},
		{"deals", map[string]any{"name": "Giant magnet", "account": acme.Hex(), "stage": "Negotiation", "amount": 4500.0, "probability": 75, "close_date": now.AddDate(0, 0, 14)}},
	}
	for _, d := range demo {
		if _, err := insert(d.entity, d.data); err != nil {
			return fmt.Errorf("create %s record: %w", d.entity, err)
		}
	}
	fmt.Fprintf(out, "Created %d demo records\n", len(demo)+2)
	return nil
}
