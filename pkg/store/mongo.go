package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

// CollectionDatasets is the catalog collection name.
const CollectionDatasets = "Dataset"

// Mongo is the MongoDB-backed dataset store.
type Mongo struct {
	col *mongo.Collection
}

// NewMongo creates a dataset store on the given database.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{col: db.Collection(CollectionDatasets)}
}

// Get retrieves the full dataset document by pid. Returns (nil, nil) when no
// document matches.
func (s *Mongo) Get(ctx context.Context, pid string) (*Dataset, error) {
	var ds Dataset
	err := s.col.FindOne(ctx, bson.M{"pid": pid}).Decode(&ds)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset %s: %w", pid, err)
	}
	return &ds, nil
}

// FindByPid implements authz.DatasetFetcher.
func (s *Mongo) FindByPid(ctx context.Context, pid string) (*authz.DatasetDocument, error) {
	ds, err := s.Get(ctx, pid)
	if err != nil || ds == nil {
		return nil, err
	}
	return ds.PolicyDocument(), nil
}

// FindAll returns the datasets matching the filter's where clause, applying
// its limits. The filter is expected to be pre-narrowed by the authorization
// engine.
func (s *Mongo) FindAll(ctx context.Context, f authz.Filter) ([]Dataset, error) {
	where := f.Where
	if where == nil {
		where = bson.M{}
	}

	opts := options.Find()
	if f.Limits != nil {
		if f.Limits.Skip > 0 {
			opts.SetSkip(f.Limits.Skip)
		}
		if f.Limits.Limit > 0 {
			opts.SetLimit(f.Limits.Limit)
		}
		if sort := parseOrder(f.Limits.Order); sort != nil {
			opts.SetSort(sort)
		}
	}

	cursor, err := s.col.Find(ctx, where, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer cursor.Close(ctx)

	var datasets []Dataset
	if err := cursor.All(ctx, &datasets); err != nil {
		return nil, fmt.Errorf("failed to decode datasets: %w", err)
	}
	return datasets, nil
}

// Count returns the number of datasets matching the filter's where clause.
func (s *Mongo) Count(ctx context.Context, f authz.Filter) (int64, error) {
	where := f.Where
	if where == nil {
		where = bson.M{}
	}
	count, err := s.col.CountDocuments(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return count, nil
}

// Insert stores a dataset document.
func (s *Mongo) Insert(ctx context.Context, ds *Dataset) error {
	if _, err := s.col.InsertOne(ctx, ds); err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", ds.Pid, err)
	}
	return nil
}

// parseOrder converts "field:desc" into a Mongo sort document. Unknown or
// empty specs yield nil (natural order).
func parseOrder(order string) bson.D {
	if order == "" {
		return nil
	}
	field, dir, _ := strings.Cut(order, ":")
	if field == "" {
		return nil
	}
	direction := 1
	if strings.EqualFold(dir, "desc") {
		direction = -1
	}
	return bson.D{{Key: field, Value: direction}}
}
