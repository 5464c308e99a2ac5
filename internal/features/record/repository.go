package record

import (
	"context"
	"fmt"

	"crm-reports/internal/common/models"
	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordRepository interface {
	Find(ctx context.Context, q Query) ([]Record, error)
	Count(ctx context.Context, q Query) (int64, error)
	FindByIDs(ctx context.Context, moduleName string, tenantID string, ids []string) ([]Record, error)
}

type RecordRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRecordRepository(mongodb *database.MongodbDB) RecordRepository {
	return &RecordRepositoryImpl{
		Collection: mongodb.DB.Collection("entity_records"),
	}
}

func (r *RecordRepositoryImpl) Find(ctx context.Context, q Query) ([]Record, error) {
	query, err := buildQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.EntityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	results := make([]Record, len(records))
	for i := range records {
		results[i] = flattenRecord(&records[i])
	}
	return results, nil
}

func (r *RecordRepositoryImpl) Count(ctx context.Context, q Query) (int64, error) {
	query, err := buildQuery(ctx, q)
	if err != nil {
		return 0, err
	}
	return r.Collection.CountDocuments(ctx, query)
}

func (r *RecordRepositoryImpl) FindByIDs(ctx context.Context, moduleName string, tenantID string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Find(ctx, Query{Module: moduleName, TenantID: tenantID, IDs: ids})
}

// buildQuery maps a Query onto the unified entity_records collection.
func buildQuery(ctx context.Context, q Query) (bson.M, error) {
	tenantID := q.TenantID
	if tenantID == "" {
		tenantID, _ = ctx.Value(models.TenantIDKey).(string)
	}
	if tenantID == "" {
		return nil, fmt.Errorf("organization context missing")
	}
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, err
	}

	baseQuery := bson.M{
		"tenant_id": oid,
		"entity":    q.Module,
		"deleted":   bson.M{"$ne": true},
	}
	andConditions := []bson.M{baseQuery}

	if q.Explicit() {
		oids := make([]primitive.ObjectID, 0, len(q.IDs))
		for _, id := range q.IDs {
			recordID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, fmt.Errorf("invalid record id %q: %w", id, err)
			}
			oids = append(oids, recordID)
		}
		andConditions = append(andConditions, bson.M{"_id": bson.M{"$in": oids}})
	}

	// User filters: system fields as is, everything else lives under data.
	userQuery := bson.M{}
	for k, v := range q.Filter {
		if k == "_id" || k == "created_at" || k == "updated_at" || k == "created_by" {
			userQuery[k] = v
		} else {
			userQuery["data."+k] = v
		}
	}
	if len(userQuery) > 0 {
		andConditions = append(andConditions, userQuery)
	}

	return bson.M{"$and": andConditions}, nil
}

func flattenRecord(rec *models.EntityRecord) Record {
	flat := make(Record, len(rec.Data)+6)
	for k, v := range rec.Data {
		flat[k] = v
	}
	flat["_id"] = rec.ID
	flat["id"] = rec.ID.Hex()
	flat["created_at"] = rec.CreatedAt
	flat["updated_at"] = rec.UpdatedAt
	flat["created_by"] = rec.CreatedBy
	flat["updated_by"] = rec.UpdatedBy
	return flat
}
