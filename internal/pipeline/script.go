package pipeline

// ContainsJapanese reports whether s contains at least one code point from
// the hiragana, katakana, or CJK ideograph ranges.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x3040 && r <= 0x309F: // hiragana
			return true
		case r >= 0x30A0 && r <= 0x30FF: // katakana
			return true
		case r >= 0x4E00 && r <= 0x9FAF: // CJK ideographs
			return true
		}
	}
	return false
}
