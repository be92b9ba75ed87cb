package repo

import (
	"context"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

// EnsureIndexes creates a non-unique index on name. Duplicate names stay allowed.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) (string, error) {
	name, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("name_1"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create name index: %w", err)
	}
	return name, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = ""
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return p, nil
}

func (r *MongoProductRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoProductRepository) All(ctx context.Context) iter.Seq2[models.Product, error] {
	return r.find(ctx, ProductFilter{})
}

func (r *MongoProductRepository) Search(ctx context.Context, prefix string) iter.Seq2[models.Product, error] {
	return r.find(ctx, ProductFilter{NamePrefix: prefix})
}

func (r *MongoProductRepository) LowStock(ctx context.Context, threshold int) iter.Seq2[models.Product, error] {
	return r.find(ctx, ProductFilter{MaxQty: &threshold})
}

// find streams matching documents; the cursor is closed when iteration stops.
func (r *MongoProductRepository) find(ctx context.Context, pf ProductFilter) iter.Seq2[models.Product, error] {
	return func(yield func(models.Product, error) bool) {
		cur, err := r.coll.Find(ctx, filterDocument(pf))
		if err != nil {
			yield(models.Product{}, fmt.Errorf("failed to query products: %w", err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var p models.Product
			if err := cur.Decode(&p); err != nil {
				yield(models.Product{}, fmt.Errorf("failed to decode product: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(models.Product{}, fmt.Errorf("failed to read products: %w", err))
		}
	}
}

func (r *MongoProductRepository) UpdateQuantity(ctx context.Context, pattern string, quantity int, mode UpdateMode) (int64, error) {
	filter := filterDocument(ProductFilter{NameContains: pattern})
	update := bson.M{"$set": bson.M{"quantity": quantity}}

	if mode == UpdateUnique {
		n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(2))
		if err != nil {
			return 0, fmt.Errorf("failed to count products: %w", err)
		}
		if n == 0 {
			return 0, ErrProductNotFound
		}
		if n > 1 {
			return 0, ErrAmbiguousMatch
		}
	}

	var (
		res *mongo.UpdateResult
		err error
	)
	if mode == UpdateAll {
		res, err = r.coll.UpdateMany(ctx, filter, update)
	} else {
		res, err = r.coll.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrProductNotFound
	}
	return res.MatchedCount, nil
}

func (r *MongoProductRepository) Totals(ctx context.Context) (Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_quantity", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$quantity", "$price"}},
			}}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	defer cur.Close(ctx)

	var t Totals
	if cur.Next(ctx) {
		if err := cur.Decode(&t); err != nil {
			return Totals{}, fmt.Errorf("failed to decode totals: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return Totals{}, fmt.Errorf("failed to read totals: %w", err)
	}
	return t, nil
}

func filterDocument(pf ProductFilter) bson.M {
	filter := bson.M{}
	if pattern := pf.namePattern(); pattern != "" {
		filter["name"] = primitive.Regex{Pattern: pattern, Options: "i"}
	}
	if pf.MaxQty != nil {
		filter["quantity"] = bson.M{"$lte": *pf.MaxQty}
	}
	return filter
}
