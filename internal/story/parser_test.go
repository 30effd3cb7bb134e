package story

import (
	"errors"
	"testing"
)

func TestParse_DogStory(t *testing.T) {
	content := "Given a Dog of age 6\n" +
		"When the dog is not taken out for a walk, and the number of hours is 5\n" +
		"Then the house condition is smelly"

	st, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(st) != 3 {
		t.Fatalf("len(story) = %d, want 3", len(st))
	}

	want := []Sentence{
		{Kind: Given, Phrase: "a Dog of age", Param: "6", Raw: "Given a Dog of age 6", Line: 1},
		{Kind: When, Phrase: "the dog is not taken out for a walk, and the number of hours is", Param: "5",
			Raw: "When the dog is not taken out for a walk, and the number of hours is 5", Line: 2},
		{Kind: Then, Phrase: "the house condition is", Param: "smelly", Raw: "Then the house condition is smelly", Line: 3},
	}
	for i, w := range want {
		if st[i] != w {
			t.Errorf("story[%d] = %+v, want %+v", i, st[i], w)
		}
	}
}

func TestParse_EmptyText(t *testing.T) {
	st, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if len(st) != 0 {
		t.Errorf("len(story) = %d, want 0", len(st))
	}
}

func TestParse_SkipsBlankLinesAndNormalizesCRLF(t *testing.T) {
	st, err := Parse("Given a Dog of age 6\r\n\r\n   \r\nThen the house condition is clean\r\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(st) != 2 {
		t.Fatalf("len(story) = %d, want 2", len(st))
	}
	if st[1].Line != 4 {
		t.Errorf("story[1].Line = %d, want 4", st[1].Line)
	}
	if st[1].Param != "clean" {
		t.Errorf("story[1].Param = %q, want %q", st[1].Param, "clean")
	}
}

func TestParse_PreservesInnerWhitespace(t *testing.T) {
	st, err := Parse("When the  dog barks 3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if st[0].Phrase != "the  dog barks" {
		t.Errorf("Phrase = %q, want %q", st[0].Phrase, "the  dog barks")
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{name: "unknown keyword", text: "Given a Dog of age 6\nAnd the dog barks 3", line: 2},
		{name: "lowercase keyword", text: "given a Dog of age 6", line: 1},
		{name: "keyword only", text: "Given", line: 1},
		{name: "no phrase", text: "Given 6", line: 1},
		{name: "bad line after good lines", text: "Given a Dog of age 6\nWhen x 1\nThen nothing", line: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Parse() = %v, want error", st)
			}
			if !errors.Is(err, ErrMalformedStory) {
				t.Errorf("errors.Is(err, ErrMalformedStory) = false for %v", err)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if syn.Line != tt.line {
				t.Errorf("SyntaxError.Line = %d, want %d", syn.Line, tt.line)
			}
			if st != nil {
				t.Errorf("story = %v, want nil on error", st)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		keyword string
		want    Kind
		ok      bool
	}{
		{"Given", Given, true},
		{"When", When, true},
		{"Then", Then, true},
		{"GIVEN", 0, false},
		{"And", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.keyword)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = (%v, %v), want (%v, %v)", tt.keyword, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSentence_StringIsRawLine(t *testing.T) {
	s := Sentence{Kind: Then, Phrase: "the house condition is", Param: "clean", Raw: "Then the house condition is clean"}
	if s.String() != "Then the house condition is clean" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestParse_ParameterIsSingleTrailingToken(t *testing.T) {
	st, err := Parse("Then the kennel is Happy Tails")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if st[0].Phrase != "the kennel is Happy" {
		t.Errorf("Phrase = %q, want %q", st[0].Phrase, "the kennel is Happy")
	}
	if st[0].Param != "Tails" {
		t.Errorf("Param = %q, want %q", st[0].Param, "Tails")
	}
}
