// internal/api/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"

	"github.com/dalemusser/classhub/internal/app/system/indexes"
	"github.com/dalemusser/classhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateSession is returned when a session already occupies the same
// date, time slot and room.
var ErrDuplicateSession = errors.New("a session already exists for that date, time slot and room")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("class_sessions")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}, {Key: "room", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_date_slot_room"),
		},
		mongo.IndexModel{Keys: bson.D{{Key: "students", Value: 1}}, Options: options.Index().SetName("idx_students")},
	)
}

var sortBySchedule = bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.ClassSession, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sortBySchedule))
	if err != nil {
		return nil, err
	}
	out := []models.ClassSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every session in schedule order.
func (s *Store) List(ctx context.Context) ([]models.ClassSession, error) {
	return s.find(ctx, bson.M{})
}

// ForStudent returns the sessions mssv is enrolled in, in schedule order.
func (s *Store) ForStudent(ctx context.Context, mssv string) ([]models.ClassSession, error) {
	return s.find(ctx, bson.M{"students": mssv})
}

// Get returns mongo.ErrNoDocuments when id is unknown.
func (s *Store) Get(ctx context.Context, id models.ID) (models.ClassSession, error) {
	var cs models.ClassSession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cs); err != nil {
		return models.ClassSession{}, err
	}
	return cs, nil
}

// Create assigns an id and an empty roster.
func (s *Store) Create(ctx context.Context, cs models.ClassSession) (models.ClassSession, error) {
	cs.ID = models.ID(uuid.NewString())
	cs.CreatedAt = models.Now()
	// $addToSet needs an array, not null.
	cs.Enrolled = []string{}
	if _, err := s.c.InsertOne(ctx, cs); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ClassSession{}, ErrDuplicateSession
		}
		return models.ClassSession{}, err
	}
	return cs, nil
}

// Enroll adds mssvs to the session roster, ignoring ones already there.
// The bool is false when the session does not exist.
func (s *Store) Enroll(ctx context.Context, id models.ID, mssvs []string) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"students": bson.M{"$each": mssvs}},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullStudent removes mssv from every roster.
func (s *Store) PullStudent(ctx context.Context, mssv string) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"students": mssv}, bson.M{"$pull": bson.M{"students": mssv}})
	return err
}
