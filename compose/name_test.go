package compose

import "testing"

func TestParseName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"foo", "/_/foo", false},
		{"pkg/foo", "/_/pkg/foo", false},
		{"/ns/foo", "/ns/foo", false},
		{"/ns/pkg/foo", "/ns/pkg/foo", false},
		{"ns/pkg/foo", "/ns/pkg/foo", false},
		{"/foo", "", true},
		{"a/b/c/d", "", true},
		{"", "", true},
		{"/ns//foo", "", true},
	}
	for _, c := range cases {
		got, err := ParseName(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseName(%q) = %q, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseName(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
