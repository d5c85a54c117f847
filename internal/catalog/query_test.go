package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Query
	}{
		{
			name:  "simple query without dot",
			input: "taco",
			want:  &Query{Raw: "taco", Fragments: []string{"taco"}, LinkFragments: []string{"taco"}},
		},
		{
			name:  "multiple fragments without dot",
			input: "  Taco   Place ",
			want:  &Query{Raw: "taco   place", Fragments: []string{"taco", "place"}, LinkFragments: []string{"taco", "place"}},
		},
		{
			name:  "app scoped query",
			input: "yelp.taco",
			want: &Query{
				Raw: "yelp.taco", HasDot: true,
				Fragments:     []string{"yelp", "taco"},
				AppFragments:  []string{"yelp"},
				LinkFragments: []string{"taco"},
			},
		},
		{
			name:  "app scoped query with spaces",
			input: "yelp.taco pl",
			want: &Query{
				Raw: "yelp.taco pl", HasDot: true,
				Fragments:     []string{"yelp", "taco", "pl"},
				AppFragments:  []string{"yelp"},
				LinkFragments: []string{"taco", "pl"},
			},
		},
		{
			name:  "app only",
			input: "yelp.",
			want:  &Query{Raw: "yelp.", HasDot: true, Fragments: []string{"yelp"}, AppFragments: []string{"yelp"}},
		},
		{
			name:  "empty query",
			input: "",
			want:  &Query{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.input)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseQuery(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestWords(t *testing.T) {
	got := Words("Taco Place - Downtown #2")
	want := []string{"taco", "place", "downtown", "2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
}
