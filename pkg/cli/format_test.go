package cli

import "testing"

func TestColorWrapping(t *testing.T) {
	orig := colorEnabled
	defer func() { colorEnabled = orig }()

	colorEnabled = true
	if got := Green("PASS"); got != "\033[32mPASS\033[0m" {
		t.Errorf("Green() = %q", got)
	}
	if got := Red("FAIL"); got != "\033[31mFAIL\033[0m" {
		t.Errorf("Red() = %q", got)
	}

	colorEnabled = false
	for _, f := range []func(string) string{Green, Yellow, Red, Dim} {
		if got := f("x"); got != "x" {
			t.Errorf("NO_COLOR output = %q, want plain", got)
		}
	}
}

func TestDotPad(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{"verify-bgp", 16, "verify-bgp ....."},
		{"verify-bgp", 11, "verify-bgp"},
		{"verify-bgp", 0, "verify-bgp"},
		{"", 4, " ..."},
	}

	for _, tt := range tests {
		if got := DotPad(tt.name, tt.width); got != tt.want {
			t.Errorf("DotPad(%q, %d) = %q, want %q", tt.name, tt.width, got, tt.want)
		}
	}
}
