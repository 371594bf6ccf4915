package sessionstore_test

import (
	"errors"
	"testing"

	sessionstore "github.com/dalemusser/classhub/internal/api/store/sessions"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	late, err := store.Create(ctx, models.ClassSession{Date: "2026-10-20", TimeSlot: "07:30-09:30", Room: "A101"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if late.ID.IsZero() || late.CreatedAt.IsZero() {
		t.Errorf("Create should assign id and time: %+v", late)
	}
	if _, err := store.Create(ctx, models.ClassSession{Date: "2026-10-01", TimeSlot: "07:30-09:30", Room: "A101"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = store.Create(ctx, models.ClassSession{Date: "2026-10-20", TimeSlot: "07:30-09:30", Room: "A101"})
	if !errors.Is(err, sessionstore.ErrDuplicateSession) {
		t.Errorf("duplicate: got %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Date != "2026-10-01" {
		t.Errorf("List order: %+v", all)
	}
}

func TestStore_EnrollIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cs, err := store.Create(ctx, models.ClassSession{Date: "2026-10-20", TimeSlot: "07:30-09:30", Room: "A101"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if ok, err := store.Enroll(ctx, cs.ID, []string{"SV001", "SV002"}); err != nil || !ok {
			t.Fatalf("Enroll: %v %v", ok, err)
		}
	}
	got, _ := store.Get(ctx, cs.ID)
	if len(got.Enrolled) != 2 {
		t.Errorf("roster: %v", got.Enrolled)
	}

	mine, _ := store.ForStudent(ctx, "SV002")
	if len(mine) != 1 {
		t.Errorf("ForStudent: %d sessions", len(mine))
	}

	if err := store.PullStudent(ctx, "SV002"); err != nil {
		t.Fatalf("PullStudent: %v", err)
	}
	got, _ = store.Get(ctx, cs.ID)
	if len(got.Enrolled) != 1 || got.Enrolled[0] != "SV001" {
		t.Errorf("after pull: %v", got.Enrolled)
	}

	if ok, _ := store.Enroll(ctx, "missing", []string{"SV001"}); ok {
		t.Error("enroll into unknown session should not match")
	}
}
