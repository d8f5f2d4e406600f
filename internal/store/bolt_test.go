package store_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/MegaGrindStone/ollamachat/internal/models"
	"github.com/MegaGrindStone/ollamachat/internal/store"
)

func newTestStore(t *testing.T) store.Bolt {
	t.Helper()

	s, err := store.NewBolt(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)

	messages := []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi there"},
	}
	if err := s.Save("conv-1", messages); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("conv-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(got, messages) {
		t.Errorf("Load() = %+v, want %+v", got, messages)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("conv-1", []models.Message{{Role: models.RoleUser, Content: "old"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	updated := []models.Message{
		{Role: models.RoleUser, Content: "old"},
		{Role: models.RoleAssistant, Content: "new"},
	}
	if err := s.Save("conv-1", updated); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("conv-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(got, updated) {
		t.Errorf("Load() = %+v, want %+v", got, updated)
	}
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(id, []models.Message{{Role: models.RoleUser, Content: id}}); err != nil {
			t.Fatalf("Save(%q) error = %v", id, err)
		}
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("List() = %q, want [a b c]", ids)
	}

	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ids, err = s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(ids, []string{"a", "c"}) {
		t.Errorf("List() after delete = %q, want [a c]", ids)
	}

	if err := s.Delete("missing"); err != nil {
		t.Errorf("Delete() of unknown ID error = %v, want nil", err)
	}
}
