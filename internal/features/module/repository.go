package module

import (
	"context"
	"errors"
	"fmt"

	"crm-reports/internal/common/models"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrModuleNotFound = errors.New("module not found")

type ModuleRepository interface {
	FindByName(ctx context.Context, name string) (*Module, error)
}

type ModuleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewModuleRepository(mongodb *database.MongodbDB) ModuleRepository {
	return &ModuleRepositoryImpl{
		Collection: mongodb.DB.Collection("entities"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("organization context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *ModuleRepositoryImpl) FindByName(ctx context.Context, name string) (*Module, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	var module Module
	err = r.Collection.FindOne(ctx, bson.M{"name": name, "tenant_id": oid}).Decode(&module)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}
