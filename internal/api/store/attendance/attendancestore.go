// internal/api/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"time"

	"github.com/dalemusser/classhub/internal/app/system/indexes"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "date", Value: 1}, {Key: "mssv", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_session_date_mssv"),
		},
		mongo.IndexModel{Keys: bson.D{{Key: "mssv", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("idx_mssv_date")},
	)
}

// Mark sets the status for one student on one date, stamping the time.
func (s *Store) Mark(ctx context.Context, rec models.AttendanceRecord, now time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"session_id": rec.SessionID, "date": rec.Date, "mssv": rec.MSSV},
		bson.M{"$set": bson.M{
			"status": rec.Status,
			"hoten":  rec.FullName,
			"time":   now.Format("15:04:05"),
		}},
		options.Update().SetUpsert(true))
	return err
}

// ForSessionDate returns the marks recorded for one session day.
func (s *Store) ForSessionDate(ctx context.Context, sessionID models.ID, date string) ([]models.AttendanceRecord, error) {
	return s.find(ctx, bson.M{"session_id": sessionID, "date": date}, bson.D{{Key: "mssv", Value: 1}})
}

// ForStudent returns every mark for mssv, newest date first.
func (s *Store) ForStudent(ctx context.Context, mssv string) ([]models.AttendanceRecord, error) {
	return s.find(ctx, bson.M{"mssv": mssv}, bson.D{{Key: "date", Value: -1}})
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.AttendanceRecord, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	out := []models.AttendanceRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStudent removes every mark for mssv.
func (s *Store) DeleteStudent(ctx context.Context, mssv string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"mssv": mssv})
	return err
}
