package module

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeLookup   FieldType = "lookup"
	FieldTypeEmail    FieldType = "email"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCurrency FieldType = "currency"
)

type ModuleField struct {
	Name     string     `json:"name" bson:"name"`
	Label    string     `json:"label" bson:"label"`
	Type     FieldType  `json:"type" bson:"type"`
	Required bool       `json:"required" bson:"required"`
	Lookup   *LookupDef `json:"lookup,omitempty" bson:"lookup,omitempty"`
	IsSystem bool       `json:"is_system" bson:"is_system"`
}

type LookupDef struct {
	LookupModule string `json:"lookup_module" bson:"lookup_module"` // Target Module Name
	LookupLabel  string `json:"lookup_label" bson:"lookup_label"`   // Target Field to display in UI (e.g. name)
	ValueField   string `json:"value_field" bson:"value_field"`     // Target Field to store (usually _id)
}

// Module is a data-model type: records of one module share its field list.
type Module struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	Name      string             `json:"name" bson:"name"` // Unique Identifier (e.g., "leads", "deals")
	Label     string             `json:"label" bson:"label"`
	IsSystem  bool               `json:"is_system" bson:"is_system"`
	Fields    []ModuleField      `json:"fields" bson:"fields"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// FieldNames lists the declared field names, primary key first.
func (m *Module) FieldNames() []string {
	names := []string{"id"}
	for _, f := range m.Fields {
		if f.Name == "" || f.Name == "id" || f.Name == "_id" {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// LookupFields returns the fields that reference another module.
func (m *Module) LookupFields() []ModuleField {
	var out []ModuleField
	for _, f := range m.Fields {
		if f.Type == FieldTypeLookup && f.Lookup != nil && f.Lookup.LookupModule != "" {
			out = append(out, f)
		}
	}
	return out
}
