package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// MaxStemLen bounds generated filename stems.
const MaxStemLen = 80

// MaxSummaryLen keeps audit records compact.
const MaxSummaryLen = 1000

// SanitizeStem makes a service-proposed filename stem filesystem-safe:
// lowercase, ASCII, underscore-separated, path-separator-free, bounded
// length. It never fails; unnameable output degrades to a deterministic
// name derived from fallbackSeed, so the pipeline cannot stall here.
func SanitizeStem(stem, fallbackSeed string) string {
	base := filepath.Base(strings.TrimSpace(stem))

	// Models occasionally append the extension despite instructions.
	for _, ext := range []string{".pdf", ".txt"} {
		if strings.EqualFold(filepath.Ext(base), ext) {
			base = base[:len(base)-len(ext)]
		}
	}

	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	for strings.Contains(base, "__") {
		base = strings.ReplaceAll(base, "__", "_")
	}
	base = strings.Trim(base, "_-")

	if len(base) > MaxStemLen {
		base = strings.Trim(base[:MaxStemLen], "_-")
	}
	if base == "" {
		return FallbackStem(fallbackSeed)
	}
	return base
}

// FallbackStem derives a deterministic stem from a seed (typically the
// original filename).
func FallbackStem(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return "document_" + hex.EncodeToString(sum[:])[:10]
}

// TruncateRunes caps s at max runes without splitting a multi-byte sequence.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
