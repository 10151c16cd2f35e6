package ranking

import "testing"

func TestTruncatedSimilarity(t *testing.T) {
	tests := []struct {
		sim  float64
		want int
	}{
		{0, 0},
		{0.99, 0},
		{1.0, 1},
		{2.7, 2},
	}
	for _, tc := range tests {
		r := Row{Similarity: tc.sim}
		if got := r.TruncatedSimilarity(); got != tc.want {
			t.Errorf("TruncatedSimilarity(%v) = %d, want %d", tc.sim, got, tc.want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    Selection
		wantErr bool
	}{
		{"", Position, false},
		{"position", Position, false},
		{"similarity", Similarity, false},
		{"best", "", true},
	}
	for _, tc := range tests {
		got, err := ParseSelection(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseSelection(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSelection(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
