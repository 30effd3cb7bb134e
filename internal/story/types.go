// Package story parses plain-text Given/When/Then stories into typed sentences.
package story

import "fmt"

// Kind is the role of a sentence: Given, When, or Then.
type Kind int

const (
	// Given sets up the target instance. Exactly one runs per story.
	Given Kind = iota + 1
	// When mutates the target instance.
	When
	// Then asserts on the target instance.
	Then
)

// String returns the story keyword for the kind.
func (k Kind) String() string {
	switch k {
	case Given:
		return "Given"
	case When:
		return "When"
	case Then:
		return "Then"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a story keyword to its Kind. Keywords are case-sensitive.
func ParseKind(keyword string) (Kind, bool) {
	switch keyword {
	case "Given":
		return Given, true
	case "When":
		return When, true
	case "Then":
		return Then, true
	}
	return 0, false
}

// MarshalText renders the kind as its keyword.
func (k Kind) MarshalText() ([]byte, error) {
	if k < Given || k > Then {
		return nil, fmt.Errorf("invalid sentence kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a keyword into the kind.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown sentence kind %q", string(text))
	}
	*k = parsed
	return nil
}

// Sentence is one parsed story line.
type Sentence struct {
	// Kind is the sentence role taken from the leading keyword.
	Kind Kind `json:"kind" yaml:"kind"`
	// Phrase is the text between the keyword and the parameter.
	Phrase string `json:"phrase" yaml:"phrase"`
	// Param is the last whitespace-delimited token of the line.
	Param string `json:"param" yaml:"param"`
	// Raw is the original line.
	Raw string `json:"raw" yaml:"raw"`
	// Line is the 1-based source line number.
	Line int `json:"line" yaml:"line"`
}

// String returns the original story line.
func (s Sentence) String() string {
	return s.Raw
}

// Story is an ordered sequence of sentences.
type Story []Sentence
