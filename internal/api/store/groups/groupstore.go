// internal/api/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"

	"github.com/dalemusser/classhub/internal/app/system/indexes"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c,
		mongo.IndexModel{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_session_created")},
		mongo.IndexModel{Keys: bson.D{{Key: "members.mssv", Value: 1}}, Options: options.Index().SetName("idx_member_mssv")},
	)
}

// BySession returns the session's groups in creation order.
func (s *Store) BySession(ctx context.Context, sessionID models.ID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns mongo.ErrNoDocuments when id is unknown.
func (s *Store) Get(ctx context.Context, id models.ID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ForStudent returns the newest group mssv belongs to, or nil.
func (s *Store) ForStudent(ctx context.Context, mssv string) (*models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"members.mssv": mssv},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// InsertMany stores groups, assigning ids and creation times in order.
func (s *Store) InsertMany(ctx context.Context, groups []models.Group) ([]models.Group, error) {
	if len(groups) == 0 {
		return []models.Group{}, nil
	}
	now := models.Now()
	docs := make([]any, len(groups))
	out := make([]models.Group, len(groups))
	for i, g := range groups {
		g.ID = models.ID(uuid.NewString())
		g.CreatedAt = now
		g.SetMembers(g.Members)
		out[i] = g
		docs[i] = g
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return out, nil
}

// SetMembers replaces the member list and returns the updated group.
// mongo.ErrNoDocuments means the group is gone.
func (s *Store) SetMembers(ctx context.Context, id models.ID, members []models.GroupMember) (models.Group, error) {
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"members": members, "member_count": len(members)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Delete removes one group. The bool is false when nothing matched.
func (s *Store) Delete(ctx context.Context, id models.ID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// PullMember removes mssv from every group and deletes groups left empty.
func (s *Store) PullMember(ctx context.Context, mssv string) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"members.mssv": mssv}, bson.M{
		"$pull": bson.M{"members": bson.M{"mssv": mssv}},
		"$inc":  bson.M{"member_count": -1},
	})
	if err != nil {
		return err
	}
	_, err = s.c.DeleteMany(ctx, bson.M{"member_count": bson.M{"$lte": 0}})
	return err
}
