package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)

	result = Parse("   ")
	assert.Equal(t, "", result.Command)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("help")
	assert.Equal(t, "help", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("NORTH")
	assert.Equal(t, "north", result.Command)

	result = Parse("SaY Hello")
	assert.Equal(t, "say", result.Command)
	assert.Equal(t, "Hello", result.RawArgs)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("say hello world")
	assert.Equal(t, "say", result.Command)
	assert.Equal(t, []string{"hello", "world"}, result.Args)
	assert.Equal(t, "hello world", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  yell   hello   there  ")
	assert.Equal(t, "yell", result.Command)
	assert.Equal(t, []string{"hello", "there"}, result.Args)
	assert.Equal(t, "hello   there", result.RawArgs)
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		result := Parse(word)
		if result.Command == "" {
			t.Fatalf("non-empty input %q produced empty command", word)
		}
	})
}
