package report

import (
	"context"
	"errors"
	"time"

	"crm-reports/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSavedReportNotFound = errors.New("saved report not found")

type SavedReportRepository interface {
	Create(ctx context.Context, saved *SavedReport) error
	Get(ctx context.Context, tenantID, id string) (*SavedReport, error)
	List(ctx context.Context, filter SavedReportFilter) ([]SavedReport, int64, error)
	Delete(ctx context.Context, tenantID, id string) error
	// FindOlderThan spans every tenant; retention is global.
	FindOlderThan(ctx context.Context, cutoff time.Time) ([]SavedReport, error)
}

type SavedReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSavedReportRepository(db *database.MongodbDB) SavedReportRepository {
	return &SavedReportRepositoryImpl{
		Collection: db.DB.Collection("saved_reports"),
	}
}

func (r *SavedReportRepositoryImpl) Create(ctx context.Context, saved *SavedReport) error {
	now := time.Now()
	saved.CreatedAt = now
	saved.UpdatedAt = now
	res, err := r.Collection.InsertOne(ctx, saved)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		saved.ID = oid
	}
	return nil
}

// byID matches one saved report of one tenant.
func byID(tenantID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrSavedReportNotFound
	}
	return bson.M{"_id": oid, "tenant_id": tenantID}, nil
}

func (r *SavedReportRepositoryImpl) Get(ctx context.Context, tenantID, id string) (*SavedReport, error) {
	query, err := byID(tenantID, id)
	if err != nil {
		return nil, err
	}
	var saved SavedReport
	err = r.Collection.FindOne(ctx, query).Decode(&saved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSavedReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *SavedReportRepositoryImpl) List(ctx context.Context, filter SavedReportFilter) ([]SavedReport, int64, error) {
	query := bson.M{}
	if filter.TenantID != "" {
		query["tenant_id"] = filter.TenantID
	}
	if filter.RunBy != "" {
		query["run_by"] = filter.RunBy
	}
	if filter.Module != "" {
		query["module"] = filter.Module
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reports := []SavedReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *SavedReportRepositoryImpl) Delete(ctx context.Context, tenantID, id string) error {
	query, err := byID(tenantID, id)
	if err != nil {
		return err
	}
	res, err := r.Collection.DeleteOne(ctx, query)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSavedReportNotFound
	}
	return nil
}

func (r *SavedReportRepositoryImpl) FindOlderThan(ctx context.Context, cutoff time.Time) ([]SavedReport, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []SavedReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
