package roundtrip

import (
	"errors"
	"strings"
	"testing"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/value"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCheckOK(t *testing.T) {
	doc := mustParse(t, `{"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"tags":["x","y"]}`)

	r, err := Check(doc, nil, nil)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !r.OK {
		t.Errorf("expected OK, diff:\n%s", r.Diff)
	}
	if r.Diff != "" || r.Patch != nil {
		t.Errorf("expected no diff or patch, got %q / %s", r.Diff, r.Patch)
	}
	if !strings.HasPrefix(r.TOON, "items[2]{id,name}:") {
		t.Errorf("unexpected TOON:\n%s", r.TOON)
	}
}

func TestCheckMismatchedDelimiter(t *testing.T) {
	doc := mustParse(t, `{"tags":["x","y"]}`)

	r, err := Check(doc, &toon.EncodeOptions{Delimiter: '|'}, &toon.DecodeOptions{Delimiter: ','})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if r.OK {
		t.Fatal("expected lossy round trip")
	}
	if !strings.Contains(r.Diff, `+     "x|y"`) {
		t.Errorf("diff does not show the merged element:\n%s", r.Diff)
	}
	if len(r.Patch) == 0 {
		t.Error("expected a merge patch")
	}
}

func TestCheckUnsupported(t *testing.T) {
	doc := mustParse(t, `{"matrix":[[1,2],[3,4]]}`)

	_, err := Check(doc, nil, nil)
	if !errors.Is(err, toon.ErrUnsupportedStructure) {
		t.Fatalf("expected ErrUnsupportedStructure, got %v", err)
	}
}

func TestLineDiff(t *testing.T) {
	if d := LineDiff("a\nb\n", "a\nb\n"); d != "" {
		t.Errorf("expected empty diff, got %q", d)
	}

	got := LineDiff("a\nb\nc\n", "a\nB\nc\n")
	want := "  a\n- b\n+ B\n  c\n"
	if got != want {
		t.Errorf("LineDiff =\n%q\nwant\n%q", got, want)
	}
}
