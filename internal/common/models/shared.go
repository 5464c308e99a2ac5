package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
	UserIDKey   ContextKey = "user_id"
)

// Product Types
type Product string

const (
	ProductCRM       Product = "crm"
	ProductERP       Product = "erp"
	ProductAnalytics Product = "analytics"
	ProductReporting Product = "reporting"
)

// EntityRecord - The actual data
type EntityRecord struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TenantID  primitive.ObjectID     `json:"tenant_id" bson:"tenant_id"`
	Product   Product                `json:"product" bson:"product"`
	Entity    string                 `json:"entity" bson:"entity"` // Name of the Entity
	Data      map[string]interface{} `json:"data" bson:"data"`
	CreatedBy string                 `json:"created_by" bson:"created_by"` // User ID
	UpdatedBy string                 `json:"updated_by" bson:"updated_by"` // User ID
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" bson:"updated_at"`
	Deleted   bool                   `json:"__deleted" bson:"deleted"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Status    string             `bson:"status" json:"status"` // active, inactive, suspended
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type Log struct {
	AppID        string                 `bson:"app_id" json:"app_id"`
	Message      string                 `bson:"message" json:"message"`
	Caller       string                 `bson:"caller,omitempty" json:"caller,omitempty"`
	Fields       map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
	LogLevelId   int                    `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time              `bson:"created_on_utc" json:"created_on_utc"`
}
