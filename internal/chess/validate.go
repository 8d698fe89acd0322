// Package chess provides move-token validation and board replay helpers.
package chess

import (
	"regexp"
	"strings"
)

// Patterns for tokens that are tokenizer noise, not moves.
var invalidMovePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.+`), // move-number artifacts like "7..." or "7.e4"
	regexp.MustCompile(`^\.+$`),
	regexp.MustCompile(`^\d+$`),
}

// Patterns for SAN move tokens.
var validMovePatterns = []*regexp.Regexp{
	// Castling, both notations
	regexp.MustCompile(`^O-O(-O)?$`),
	regexp.MustCompile(`^0-0(-0)?$`),
	// Piece moves with optional disambiguator and capture
	regexp.MustCompile(`^[KQRBN][a-h]?[1-8]?x?[a-h][1-8]$`),
	// Pawn pushes, captures, promotions
	regexp.MustCompile(`^[a-h][1-8]$`),
	regexp.MustCompile(`^[a-h]x[a-h][1-8]$`),
	regexp.MustCompile(`^[a-h][18]=[QRBN]$`),
	regexp.MustCompile(`^[a-h]x[a-h][18]=[QRBN]$`),
	// En passant
	regexp.MustCompile(`^[a-h]x[a-h][36](\s+e\.p\.)?$`),
}

// CleanSAN strips trailing annotation symbols (!?+#=) from a move token.
func CleanSAN(move string) string {
	return strings.TrimRight(strings.TrimSpace(move), "!?+#=")
}

// ValidSAN reports whether a token is a plausible SAN move. It screens
// upstream tokenizer noise without replaying a board, so it accepts
// moves that may be illegal in context.
func ValidSAN(move string) bool {
	clean := CleanSAN(move)
	if clean == "" {
		return false
	}
	for _, re := range invalidMovePatterns {
		if re.MatchString(clean) {
			return false
		}
	}
	for _, re := range validMovePatterns {
		if re.MatchString(clean) {
			return true
		}
	}
	return false
}
