package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"(202) 555-0175", "+12025550175"},
		{"+31 6 12345678", "+31612345678"},
		{"  +12025550175  ", "+12025550175"},
		// Unparseable numbers pass through trimmed.
		{"not a phone", "not a phone"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
