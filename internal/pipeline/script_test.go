package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsJapanese(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "latin only", input: "Hello world", expected: false},
		{name: "hiragana", input: "こんにちは", expected: true},
		{name: "mixed latin and kanji", input: "Hello 世界", expected: true},
		{name: "katakana", input: "テスト", expected: true},
		{name: "empty string", input: "", expected: false},
		{name: "digits and punctuation", input: "12345 !?", expected: false},
		{name: "single kanji among ascii", input: "abc字def", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsJapanese(tt.input))
		})
	}
}
