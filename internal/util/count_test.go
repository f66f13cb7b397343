package util

import "testing"

func TestParseCount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{name: "plain", input: "12", want: 12},
		{name: "footnote", input: "3[a]", want: 3},
		{name: "padded", input: " 4 ", want: 4},
		{name: "thousands", input: "1,204", want: 1204},
		{name: "dash", input: "–", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "text", input: "n/a", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseCount(tc.input); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
