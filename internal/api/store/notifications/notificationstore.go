// internal/api/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/dalemusser/classhub/internal/app/system/indexes"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps broadcast notifications and the per-student read receipts.
type Store struct {
	c     *mongo.Collection
	reads *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("notifications"),
		reads: db.Collection("notification_reads"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := indexes.Ensure(ctx, s.c,
		mongo.IndexModel{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_session_created")},
		mongo.IndexModel{Keys: bson.D{{Key: "recipients", Value: 1}}, Options: options.Index().SetName("idx_recipients")},
	); err != nil {
		return err
	}
	return indexes.Ensure(ctx, s.reads, mongo.IndexModel{
		Keys:    bson.D{{Key: "notification_id", Value: 1}, {Key: "mssv", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_notification_mssv"),
	})
}

// Create stores n with a fresh id and creation time.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = models.ID(uuid.NewString())
	n.CreatedAt = models.Now()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Get returns mongo.ErrNoDocuments when id is unknown.
func (s *Store) Get(ctx context.Context, id models.ID) (models.Notification, error) {
	var n models.Notification
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// ForStudent lists the session's notifications addressed to mssv, newest
// first, with IsRead filled in.
func (s *Store) ForStudent(ctx context.Context, sessionID models.ID, mssv string) ([]models.Notification, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID, "recipients": mssv},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]models.ID, len(out))
	for i, n := range out {
		ids[i] = n.ID
	}
	rcur, err := s.reads.Find(ctx, bson.M{"notification_id": bson.M{"$in": ids}, "mssv": mssv})
	if err != nil {
		return nil, err
	}
	var receipts []models.NotificationRead
	if err := rcur.All(ctx, &receipts); err != nil {
		return nil, err
	}
	read := make(map[models.ID]bool, len(receipts))
	for _, r := range receipts {
		read[r.NotificationID] = true
	}
	for i := range out {
		out[i].IsRead = read[out[i].ID]
	}
	return out, nil
}

// MarkRead records that mssv read id. Repeated calls keep one receipt and
// the first read time.
func (s *Store) MarkRead(ctx context.Context, id models.ID, mssv string) error {
	_, err := s.reads.UpdateOne(ctx,
		bson.M{"notification_id": id, "mssv": mssv},
		bson.M{"$setOnInsert": bson.M{"read_at": time.Now().UTC()}},
		options.Update().SetUpsert(true))
	return err
}

// ReadCount returns how many receipts exist for id and mssv.
func (s *Store) ReadCount(ctx context.Context, id models.ID, mssv string) (int64, error) {
	return s.reads.CountDocuments(ctx, bson.M{"notification_id": id, "mssv": mssv})
}
