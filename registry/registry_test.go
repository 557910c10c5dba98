package registry

import (
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
)

func TestPutGetResolvesUnqualifiedNames(t *testing.T) {
	r := New()
	body, _ := compose.Action("a", nil)
	if err := r.Put(&Source{Name: "pipeline", Composition: body}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	src, ok := r.Get("/_/pipeline")
	if !ok {
		t.Fatal("expected to resolve /_/pipeline")
	}
	if src.Name != "/_/pipeline" {
		t.Errorf("Name = %q, want /_/pipeline", src.Name)
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	r := New()
	if _, ok := r.Get("nope"); ok {
		t.Error("expected Get on an empty registry to fail")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	body, _ := compose.Action("a", nil)
	src := &Source{Name: "/_/pipeline", Composition: body}
	bs, err := EncodeYAML(src)
	if err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	back, err := DecodeYAML(bs)
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}
	if back.Composition.Type != "action" || back.Composition.Name() != "/_/a" {
		t.Errorf("round-tripped composition = %+v", back.Composition)
	}
}
