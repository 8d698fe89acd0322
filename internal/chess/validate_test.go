package chess

import "testing"

func TestValidSAN(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"e4", true},
		{"exd5", true},
		{"Nf3", true},
		{"Nbd2", true},
		{"R1e2", true},
		{"Qxh7", true},
		{"O-O", true},
		{"O-O-O", true},
		{"0-0", true},
		{"e8=Q", true},
		{"gxh8=N", true},
		{"exd6 e.p.", true},
		// Annotations are stripped before matching.
		{"e4!", true},
		{"Nf3+", true},
		{"Qxh7#", true},
		{"Bb5!?", true},
		// Tokenizer noise.
		{"", false},
		{"7...", false},
		{"7.e4", false},
		{"...", false},
		{"42", false},
		{"1-0", false},
		{"{+0.3}", false},
		{"$14", false},
		{"e9", false},
		{"Zf3", false},
	}
	for _, tt := range tests {
		if got := ValidSAN(tt.token); got != tt.want {
			t.Errorf("ValidSAN(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestCleanSAN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e4!", "e4"},
		{"Nf3+", "Nf3"},
		{"Qxh7#", "Qxh7"},
		{"Bb5!?", "Bb5"},
		{" e4 ", "e4"},
		{"e4", "e4"},
	}
	for _, tt := range tests {
		if got := CleanSAN(tt.in); got != tt.want {
			t.Errorf("CleanSAN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
