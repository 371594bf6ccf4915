// internal/api/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"

	"github.com/dalemusser/classhub/internal/app/system/indexes"
	"github.com/dalemusser/classhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateMSSV is returned when a student with the same MSSV exists.
var ErrDuplicateMSSV = errors.New("a student with this MSSV already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// EnsureIndexes creates the unique mssv index and the class lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c,
		mongo.IndexModel{Keys: bson.D{{Key: "mssv", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_mssv")},
		mongo.IndexModel{Keys: bson.D{{Key: "lop", Value: 1}}, Options: options.Index().SetName("idx_lop")},
	)
}

// List returns every student ordered by mssv.
func (s *Store) List(ctx context.Context) ([]models.Student, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "mssv", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns mongo.ErrNoDocuments when mssv is unknown.
func (s *Store) Get(ctx context.Context, mssv string) (models.Student, error) {
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"mssv": mssv}).Decode(&st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// ByMSSVs returns the known students among mssvs, in the order given.
// Unknown ids are skipped.
func (s *Store) ByMSSVs(ctx context.Context, mssvs []string) ([]models.Student, error) {
	if len(mssvs) == 0 {
		return []models.Student{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"mssv": bson.M{"$in": mssvs}})
	if err != nil {
		return nil, err
	}
	var found []models.Student
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[string]models.Student, len(found))
	for _, st := range found {
		byID[st.MSSV] = st
	}
	out := make([]models.Student, 0, len(found))
	for _, id := range mssvs {
		if st, ok := byID[id]; ok {
			out = append(out, st)
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, st models.Student) error {
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMSSV
		}
		return err
	}
	return nil
}

// Update replaces the profile of st.MSSV. The bool is false when no such
// student exists.
func (s *Store) Update(ctx context.Context, st models.Student) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"mssv": st.MSSV}, bson.M{"$set": bson.M{
		"hoten":    st.FullName,
		"khoa":     st.Faculty,
		"lop":      st.Class,
		"ngaysinh": st.BirthDate,
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes one student. The bool is false when nothing matched.
func (s *Store) Delete(ctx context.Context, mssv string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"mssv": mssv})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
