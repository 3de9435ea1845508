package catalog

import (
	"encoding/json"
	"testing"
)

func TestRecordString(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "plain scalar",
			json: `{"title": "Formation Drupal 10"}`,
			want: "Formation Drupal 10",
		},
		{
			name: "wrapped object",
			json: `{"title": {"value": "Formation Drupal 10"}}`,
			want: "Formation Drupal 10",
		},
		{
			name: "wrapped list of objects",
			json: `{"title": [{"value": "Formation Drupal 10"}]}`,
			want: "Formation Drupal 10",
		},
		{
			name: "list of scalars",
			json: `{"title": ["Formation Drupal 10", "ignored"]}`,
			want: "Formation Drupal 10",
		},
		{
			name: "number scalar",
			json: `{"product_id": 42}`,
			want: "42",
		},
		{
			name: "number keeps formatting",
			json: `{"field_price_eur_number": 1490.50}`,
			want: "1490.50",
		},
		{
			name: "boolean",
			json: `{"status": true}`,
			want: "true",
		},
		{
			name: "null resolves empty",
			json: `{"title": null}`,
			want: "",
		},
		{
			name: "empty list resolves empty",
			json: `{"title": []}`,
			want: "",
		},
		{
			name: "object without value member resolves empty",
			json: `{"title": {"other": "x"}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tt.json), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			field := ""
			for k := range rec {
				field = k
			}
			if got := rec.String(field); got != tt.want {
				t.Errorf("String(%q) = %q, want %q", field, got, tt.want)
			}
		})
	}
}

func TestRecordNested(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "direct object",
			json: `{"field_theme": {"name": "Informatique"}}`,
			want: "Informatique",
		},
		{
			name: "list wrapped object",
			json: `{"field_theme": [{"name": "Informatique"}]}`,
			want: "Informatique",
		},
		{
			name: "nested wrapped value",
			json: `{"field_theme": [{"name": {"value": "Informatique"}}]}`,
			want: "Informatique",
		},
		{
			name: "missing member",
			json: `{"field_theme": {"id": 3}}`,
			want: "",
		},
		{
			name: "scalar field has no members",
			json: `{"field_theme": "raw"}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tt.json), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := rec.Nested("field_theme", "name"); got != tt.want {
				t.Errorf("Nested() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordMissingField(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"title": "x"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := rec.String("absent"); got != "" {
		t.Errorf("String(absent) = %q, want empty", got)
	}
	if got := rec.Nested("absent", "name"); got != "" {
		t.Errorf("Nested(absent) = %q, want empty", got)
	}
}

// Records cached and reloaded must serialize back to the exact upstream bytes,
// unknown fields and shapes included.
func TestRecordRoundTrip(t *testing.T) {
	inputs := []string{
		`{"a":"x"}`,
		`{"a":{"value":"x"},"b":[1,2,3]}`,
		`{"a":[{"value":"x","extra":null}],"unknown":{"deep":{"nested":true}}}`,
		`{"n":1490.50,"s":null}`,
	}

	for _, input := range inputs {
		var rec Record
		if err := json.Unmarshal([]byte(input), &rec); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		out, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		// Key order is map-dependent, so compare semantically per field.
		var orig, round map[string]json.RawMessage
		if err := json.Unmarshal([]byte(input), &orig); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(out, &round); err != nil {
			t.Fatal(err)
		}
		if len(orig) != len(round) {
			t.Fatalf("field count changed: %d -> %d", len(orig), len(round))
		}
		for k, v := range orig {
			if string(round[k]) != string(v) {
				t.Errorf("field %q changed: %s -> %s", k, v, round[k])
			}
		}
	}
}
