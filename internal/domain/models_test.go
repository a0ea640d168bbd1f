package domain

import (
	"encoding/json"
	"testing"
)

func TestScalarKeepsRawToken(t *testing.T) {
	var p Prediction
	if err := json.Unmarshal([]byte(`{"label":1.50,"score":0.870}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Label.String() != "1.50" || p.Score.String() != "0.870" {
		t.Fatalf("label=%q score=%q", p.Label, p.Score)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"label":1.50,"score":0.870}` {
		t.Fatalf("round trip changed payload: %s", out)
	}
}

func TestScalarStringUnquotesStrings(t *testing.T) {
	s := NewScalar("ok")
	if s.String() != "ok" || string(s.Raw()) != `"ok"` {
		t.Fatalf("unexpected scalar %q raw=%s", s.String(), s.Raw())
	}
	var empty Scalar
	if !empty.IsZero() || empty.String() != "" {
		t.Fatalf("zero scalar should render empty")
	}
	if b, _ := empty.MarshalJSON(); string(b) != "null" {
		t.Fatalf("zero scalar should marshal as null, got %s", b)
	}
}

func TestScalarFloat64(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want float64
		ok   bool
	}{
		"number":         {raw: `12.5`, want: 12.5, ok: true},
		"numeric string": {raw: `"3"`, want: 3, ok: true},
		"text":           {raw: `"n/a"`},
		"null":           {raw: `null`},
		"object":         {raw: `{"a":1}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var s Scalar
			if err := s.UnmarshalJSON([]byte(tc.raw)); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := s.Float64()
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Float64() = %v, %v; want %v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
	var absent Scalar
	if _, ok := absent.Float64(); ok {
		t.Fatalf("absent scalar should not parse")
	}
}

func TestInferenceResultOmitsAbsentExtras(t *testing.T) {
	out, err := json.Marshal(InferenceResult{Sample: "demo-frame"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"sample":"demo-frame","prediction":null}` {
		t.Fatalf("unexpected payload %s", out)
	}
}
