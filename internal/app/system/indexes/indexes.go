// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Ensure reconciles the desired indexes of one collection and is safe to call
on every startup. An index whose keys already exist is reused; one whose name
or uniqueness differs is dropped and recreated. Errors are aggregated so every
problem is visible in one startup failure.
*/
func Ensure(ctx context.Context, coll *mongo.Collection, models ...mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := ensureOne(ctx, coll, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// lookup returns the existing index on coll whose key pattern is sig.
func lookup(ctx context.Context, coll *mongo.Collection, sig string) (*existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		if keySig(idx.Key) == sig {
			return &idx, nil
		}
	}
	return nil, cur.Err()
}

func ensureOne(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	keys, ok := m.Keys.(bson.D)
	if !ok {
		return fmt.Errorf("%s(%s): index keys must be an ordered bson.D", coll.Name(), name)
	}
	sig := keySig(keys)
	isUnique := unique != nil && *unique
	start := time.Now()

	fields := []zap.Field{
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", isUnique),
	}

	ex, err := lookup(ctx, coll, sig)
	if err != nil {
		// A collection that does not exist yet lists no indexes.
		zap.L().Debug("listing indexes failed", append(fields, zap.Error(err))...)
		ex = nil
	}

	if ex != nil {
		if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
			zap.L().Debug("reusing existing index", fields...)
			return nil
		}
		zap.L().Info("replacing index",
			append(fields, zap.String("existing", ex.Name), zap.Bool("existing_unique", ex.Unique != nil && *ex.Unique))...)
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
		}
	}

	created, err := coll.Indexes().CreateOne(ctx, m)
	if err != nil {
		zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
		if isDuplicateKeyErr(err) && isUnique {
			return fmt.Errorf("%s(%s): cannot create unique index on %s (duplicates present)", coll.Name(), name, sig)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	zap.L().Info("index ensured",
		append(fields, zap.String("created_name", created), zap.String("took", time.Since(start).String()))...)
	return nil
}
