package registry

import (
	"path/filepath"
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/util"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	name := filepath.Join(t.TempDir(), util.Gensym(8)+".db")
	s, err := NewStore(name)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveLoadRoundTrips(t *testing.T) {
	s := tempStore(t)
	body, _ := compose.Action("a", nil)
	src := &Source{Name: "pipeline", Composition: body, Doc: "hello"}
	if err := s.Save(src); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := s.Load("pipeline")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if back == nil || back.Name != "/_/pipeline" {
		t.Fatalf("Load returned %+v", back)
	}
	if back.Doc != "hello" {
		t.Errorf("Doc = %q, want %q", back.Doc, "hello")
	}
}

func TestStoreLoadMissingReturnsNil(t *testing.T) {
	s := tempStore(t)
	src, err := s.Load("nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for a missing source, got %+v", src)
	}
}

func TestStoreLoadAllAndDelete(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"a", "b", "c"} {
		body, _ := compose.Action(name, nil)
		if err := s.Save(&Source{Name: name, Composition: body}); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
	}
	all, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("LoadAll returned %d sources, want 3", len(all))
	}
	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	all, err = s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll after Delete failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("LoadAll after Delete returned %d sources, want 2", len(all))
	}
}

func TestStoreDebugLogsDoNotPanic(t *testing.T) {
	s := tempStore(t)
	s.Debug = true
	body, _ := compose.Action("a", nil)
	if err := s.Save(&Source{Name: "pipeline", Composition: body}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}
