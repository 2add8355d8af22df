package tradebook

import (
	"encoding/json"
	"testing"
)

func TestRatio(t *testing.T) {
	if r := RatioOf(USD(10), USD(0)); r.Defined() || r.String() != "N/A" {
		t.Errorf("RatioOf(10, 0) = %v, want N/A", r)
	}
	r := RatioOf(USD(1), USD(8))
	if got, ok := r.Float(); !ok || got != 0.125 {
		t.Errorf("RatioOf(1, 8) = %v, want 0.125", r)
	}
	if p := r.Percent(); !p.Equal(P(12.5)) || p.String() != "12.50%" {
		t.Errorf("Percent() = %v, want 12.50%%", p)
	}
}

func TestPercentSignedString(t *testing.T) {
	testCases := []struct {
		p    Percent
		want string
	}{
		{P(12.5), "+12.50%"},
		{P(-3), "-3.00%"},
		{P(0), "-"},
		{Percent{}, "N/A"},
	}
	for _, tc := range testCases {
		if got := tc.p.SignedString(); got != tc.want {
			t.Errorf("SignedString() = %q, want %q", got, tc.want)
		}
	}
}

func TestUndefinedMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(struct {
		R Ratio
		P Percent
		O Opt[Money]
	}{})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"R":null,"P":null,"O":null}`; got != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}
}
