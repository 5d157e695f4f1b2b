package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"notes-app/internal/backend"
	"notes-app/internal/model"
)

func TestData_Create_AssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	data := NewData()

	created, err := data.Create(ctx, model.Note{Name: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestData_Create_RejectsEmptyName(t *testing.T) {
	ctx := context.Background()
	data := NewData()

	if _, err := data.Create(ctx, model.Note{Name: "   "}); err == nil {
		t.Error("expected validation error for blank name")
	}
}

func TestData_List_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	data := NewData()

	base := time.Now()
	for i, name := range []string{"third", "first", "second"} {
		offsets := []time.Duration{2 * time.Second, 0, time.Second}
		_, err := data.Create(ctx, model.Note{Name: name, CreatedAt: base.Add(offsets[i])})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	notes, err := data.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	for i, expected := range []string{"first", "second", "third"} {
		if notes[i].Name != expected {
			t.Errorf("position %d: expected %s, got %s", i, expected, notes[i].Name)
		}
	}
}

func TestData_Delete(t *testing.T) {
	ctx := context.Background()
	data := NewData()

	created, err := data.Create(ctx, model.Note{Name: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := data.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := data.Delete(ctx, created.ID); !errors.Is(err, backend.ErrNoteNotFound) {
		t.Errorf("second delete: expected ErrNoteNotFound, got %v", err)
	}

	notes, err := data.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected empty list after delete, got %d notes", len(notes))
	}
}
