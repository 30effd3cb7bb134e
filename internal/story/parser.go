package story

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedStory is matched by every error Parse returns.
var ErrMalformedStory = errors.New("malformed story")

// SyntaxError describes the first line that violates the sentence grammar.
type SyntaxError struct {
	// Line is the 1-based line number.
	Line int
	// Text is the offending line.
	Text string
	// Reason says what was wrong with it.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed story at line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Is reports whether target is ErrMalformedStory.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformedStory
}

// splitSentence breaks a line into keyword, phrase and parameter.
// The keyword is the first whitespace-delimited token, the parameter the last,
// and the phrase is everything between them, kept verbatim.
func splitSentence(line string) (keyword, phrase, param string, ok bool) {
	first := strings.IndexFunc(line, unicode.IsSpace)
	last := strings.LastIndexFunc(line, unicode.IsSpace)
	if first < 0 || last <= first {
		return "", "", "", false
	}
	keyword = line[:first]
	param = line[last+1:]
	phrase = line[first+1 : last]
	if phrase == "" || strings.TrimSpace(phrase) == "" {
		return "", "", "", false
	}
	return keyword, phrase, param, true
}

// Parse turns story text into sentences. Empty text yields an empty story.
// Blank lines are skipped. Any other line must read
// "<Given|When|Then> <phrase...> <parameter>"; the first line that does not
// rejects the whole story with a *SyntaxError.
func Parse(text string) (Story, error) {
	if text == "" {
		return Story{}, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	st := make(Story, 0, len(lines))
	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		keyword, phrase, param, ok := splitSentence(line)
		if !ok {
			return nil, &SyntaxError{Line: lineNum, Text: raw, Reason: "expected <keyword> <phrase> <parameter>"}
		}
		kind, ok := ParseKind(keyword)
		if !ok {
			return nil, &SyntaxError{Line: lineNum, Text: raw, Reason: fmt.Sprintf("unknown keyword %q", keyword)}
		}

		st = append(st, Sentence{
			Kind:   kind,
			Phrase: phrase,
			Param:  param,
			Raw:    raw,
			Line:   lineNum,
		})
	}
	return st, nil
}
