package toon

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/paularlott/toon/value"
)

var valueComparer = cmp.Comparer(value.Equal)

func TestRoundTrip(t *testing.T) {
	// Auto-discover test cases from testdata directory
	files, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("Failed to find test files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases in testdata")
	}

	for _, jsonFile := range files {
		testCase := strings.TrimSuffix(filepath.Base(jsonFile), ".json")

		t.Run(testCase, func(t *testing.T) {
			jsonData, err := os.ReadFile(jsonFile)
			if err != nil {
				t.Fatalf("Failed to read JSON file %s: %v", jsonFile, err)
			}
			toonPath := filepath.Join("testdata", testCase+".toon")
			expectedToon, err := os.ReadFile(toonPath)
			if err != nil {
				t.Fatalf("Failed to read TOON file %s: %v", toonPath, err)
			}
			expected := strings.TrimRight(string(expectedToon), "\n")

			tree, err := value.ParseJSON(jsonData)
			if err != nil {
				t.Fatalf("Failed to parse JSON: %v", err)
			}

			encoded, err := Encode(tree)
			if err != nil {
				t.Fatalf("Failed to encode to TOON: %v", err)
			}
			if diff := cmp.Diff(expected, encoded); diff != "" {
				t.Errorf("encoding mismatch (-want +got):\n%s", diff)
			}

			decoded, err := Decode(expected)
			if err != nil {
				t.Fatalf("Failed to decode TOON: %v", err)
			}
			if diff := cmp.Diff(tree, decoded, valueComparer); diff != "" {
				t.Errorf("decoding mismatch (-want +got):\n%s", diff)
			}

			reencoded, err := Encode(decoded)
			if err != nil {
				t.Fatalf("Failed to re-encode: %v", err)
			}
			if reencoded != encoded {
				t.Errorf("re-encoding mismatch:\nFirst: %s\nSecond: %s", encoded, reencoded)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		enc     *EncodeOptions
		wantErr bool
	}{
		{"nil", nil, false},
		{"defaults", &EncodeOptions{}, false},
		{"four spaces", &EncodeOptions{Indent: "    "}, false},
		{"tab indent", &EncodeOptions{Indent: "\t"}, true},
		{"pipe", &EncodeOptions{Delimiter: '|'}, false},
		{"tab delimiter", &EncodeOptions{Delimiter: '\t'}, false},
		{"colon delimiter", &EncodeOptions{Delimiter: ':'}, true},
		{"quote delimiter", &EncodeOptions{Delimiter: '"'}, true},
		{"space delimiter", &EncodeOptions{Delimiter: ' '}, true},
		{"minus delimiter", &EncodeOptions{Delimiter: '-'}, true},
		{"plus delimiter", &EncodeOptions{Delimiter: '+'}, true},
		{"dot delimiter", &EncodeOptions{Delimiter: '.'}, true},
		{"digit delimiter", &EncodeOptions{Delimiter: '1'}, true},
		{"exponent delimiter", &EncodeOptions{Delimiter: 'e'}, true},
		{"literal letter delimiter", &EncodeOptions{Delimiter: 'n'}, true},
		{"semicolon", &EncodeOptions{Delimiter: ';'}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.enc.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := (&DecodeOptions{Delimiter: '{'}).Validate(); err == nil {
		t.Error("expected error for '{' decode delimiter")
	}
}

func TestOptionsNotMutated(t *testing.T) {
	enc := &EncodeOptions{}
	dec := &DecodeOptions{}

	obj := value.ObjectOf(value.Pair{Key: "a", Value: value.Array(value.FromInt(1), value.FromInt(2))})
	out, err := EncodeWithOptions(value.FromObject(obj), enc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeWithOptions(out, dec); err != nil {
		t.Fatal(err)
	}

	if *enc != (EncodeOptions{}) {
		t.Errorf("encode options were modified: %+v", *enc)
	}
	if *dec != (DecodeOptions{}) {
		t.Errorf("decode options were modified: %+v", *dec)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{"comma", ',', false},
		{"TAB", '\t', false},
		{`\t`, '\t', false},
		{"pipe", '|', false},
		{";", ';', false},
		{":", 0, true},
		{"ab", 0, true},
		{"-", 0, true},
		{"7", 0, true},
		{"t", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDelimiter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type product struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}

type catalog struct {
	Products []product `json:"products"`
	Tags     []string  `json:"tags"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := catalog{
		Products: []product{
			{ID: 1, Name: "T-Shirt", Price: 19.99, InStock: true},
			{ID: 2, Name: "Mug", Price: 8.5, InStock: false},
			{ID: 3, Name: "Sticker", Price: 2.25, InStock: true},
		},
		Tags: []string{"new", "sale"},
	}

	out, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.HasPrefix(out, "products[3]{id,name,price,inStock}:\n") {
		t.Errorf("unexpected header:\n%s", out)
	}

	var back catalog
	if err := Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(in, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalRejectsNonObjectRoot(t *testing.T) {
	_, err := Marshal([]int{1, 2, 3})
	if !errors.Is(err, ErrUnsupportedStructure) {
		t.Fatalf("expected ErrUnsupportedStructure, got %v", err)
	}
}

func TestFromJSONToJSON(t *testing.T) {
	src := `{"b":1,"a":{"z":[1,2.5,"x"],"y":null}}`

	out, err := FromJSON([]byte(src), nil)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	want := "b: 1\na:\n  z[3]: 1,2.5,x\n  y: null"
	if out != want {
		t.Errorf("FromJSON = %q, want %q", out, want)
	}

	back, err := ToJSON(out, nil)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if string(back) != src {
		t.Errorf("ToJSON = %s, want %s", back, src)
	}

	if _, err := FromJSON([]byte(`[1]`), nil); !errors.Is(err, ErrUnsupportedStructure) {
		t.Errorf("expected ErrUnsupportedStructure for array root, got %v", err)
	}
	if _, err := FromJSON([]byte(`{"a":`), nil); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestSpecialFloats(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "v: 0.0\n"},
		{"negative zero", math.Copysign(0, -1), "v: -0.0\n"},
		{"large", 1e20, "v: 100000000000000000000.0\n"},
		{"small", 1e-7, "v: 0.0000001\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := obj(kv("v", value.FromFloat(tt.in)))
			encoded, err := Encode(doc)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if encoded != tt.want {
				t.Errorf("Encode() = %q, want %q", encoded, tt.want)
			}

			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			got, _ := decoded.Object().Get("v")
			if got.Kind() != value.FloatKind || got.Float() != tt.in {
				t.Errorf("decoded %s, want float %v", got, tt.in)
			}
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	tests := []struct {
		name string
		doc  value.Value
	}{
		{"empty object", obj()},
		{"object with empty array", obj(kv("arr", value.Array()))},
		{"object with empty object", obj(kv("obj", obj()))},
		{"siblings after empty object", obj(kv("obj", obj()), kv("n", value.FromInt(1)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.doc)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if diff := cmp.Diff(tt.doc, decoded, valueComparer); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNumericDelimitersRejected(t *testing.T) {
	doc := obj(kv("xs", value.Array(
		value.FromInt(-5),
		value.FromFloat(1.5),
		value.Null(),
		value.FromInt(10),
	)))

	for _, d := range []rune{'-', '.', '1', 'n', 'E'} {
		t.Run(string(d), func(t *testing.T) {
			if _, err := EncodeWithOptions(doc, &EncodeOptions{Delimiter: d}); err == nil {
				t.Errorf("expected error encoding with delimiter %q", d)
			}
			if _, err := DecodeWithOptions("xs[2]: 1;2", &DecodeOptions{Delimiter: d}); err == nil {
				t.Errorf("expected error decoding with delimiter %q", d)
			}
		})
	}

	encoded, err := EncodeWithOptions(doc, &EncodeOptions{Delimiter: ';'})
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeWithOptions(encoded, &DecodeOptions{Delimiter: ';'})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, decoded, valueComparer); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
