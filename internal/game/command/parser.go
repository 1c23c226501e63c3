package command

import "strings"

// ParseResult holds the parsed command word and arguments from one chat
// line.
type ParseResult struct {
	// Command is the first token of the input, lowercased.
	Command string
	// Args are the remaining whitespace-separated tokens.
	Args []string
	// RawArgs is the raw text after the command word, trimmed but with
	// internal spacing preserved for say/yell bodies.
	RawArgs string
}

// Parse splits a chat line into a command word and its arguments.
//
// Postcondition: Returns a ParseResult; Command is empty iff the line is
// empty or whitespace.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	word := line
	rest := ""
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		word = line[:idx]
		rest = strings.TrimSpace(line[idx+1:])
	}

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: strings.ToLower(word),
		Args:    args,
		RawArgs: rest,
	}
}
