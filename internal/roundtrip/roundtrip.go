// Package roundtrip encodes a document to TOON, decodes it back and reports
// whether anything changed on the way.
package roundtrip

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/value"
)

// Report is the outcome of one round trip.
type Report struct {
	OK   bool   `json:"ok"`
	TOON string `json:"toon"`
	// Diff is a unified line diff from the input JSON to the decoded JSON.
	Diff string `json:"diff,omitempty"`
	// Patch is the JSON merge patch that turns the input into the decoded
	// document.
	Patch json.RawMessage `json:"patch,omitempty"`
}

// Check round-trips doc. Codec failures are returned as errors; a lossy
// round trip is reported with OK false.
func Check(doc value.Value, enc *toon.EncodeOptions, dec *toon.DecodeOptions) (*Report, error) {
	text, err := toon.EncodeWithOptions(doc, enc)
	if err != nil {
		return nil, err
	}
	back, err := toon.DecodeWithOptions(text, dec)
	if err != nil {
		return nil, fmt.Errorf("decoding encoded output: %w", err)
	}

	want, err := prettyJSON(doc)
	if err != nil {
		return nil, err
	}
	got, err := prettyJSON(back)
	if err != nil {
		return nil, err
	}

	r := &Report{TOON: text, OK: jsonpatch.Equal(want, got)}
	if r.OK && !value.Equal(doc, back) {
		// Same document, different key order.
		r.OK = false
	}
	if !r.OK {
		r.Diff = LineDiff(string(want), string(got))
		if patch, err := jsonpatch.CreateMergePatch(want, got); err == nil && !bytes.Equal(patch, []byte("{}")) {
			r.Patch = patch
		}
	}
	return r, nil
}

func prettyJSON(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := value.WriteJSON(&buf, v, "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LineDiff renders a line-oriented diff of a and b. Unchanged lines are
// prefixed with two spaces, removed lines with "- " and added lines with "+ ".
// It returns "" when a and b are equal.
func LineDiff(a, b string) string {
	if a == b {
		return ""
	}

	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+ "
		case diffpatch.DiffDelete:
			prefix = "- "
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(l)
			if !strings.HasSuffix(l, "\n") {
				out.WriteByte('\n')
			}
		}
	}
	return out.String()
}
