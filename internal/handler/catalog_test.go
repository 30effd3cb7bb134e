package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/storytest-go/internal/story"
)

func TestCatalog_RegisterAndLookup(t *testing.T) {
	baseType, derivedType := newHierarchy()
	c := NewCatalog()
	require.NoError(t, c.Register(derivedType, baseType))

	got, ok := c.Lookup("derived")
	require.True(t, ok)
	assert.Same(t, derivedType, got)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"base", "derived"}, c.Names())
}

func TestCatalog_RejectsDuplicates(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(NewType("dog")))
	err := c.Register(NewType("dog"))
	assert.ErrorIs(t, err, ErrTypeExists)
}

func TestCatalog_FailedRegisterAddsNothing(t *testing.T) {
	invalid := NewType("broken", Handlers(
		Bare(story.Given, "nospace", func(_ *base) error { return nil }),
	))
	tests := []struct {
		name  string
		types []*Type
		want  error
	}{
		{name: "invalid type later in batch", types: []*Type{NewType("dog"), invalid}, want: ErrInvalidPhrase},
		{name: "duplicate within batch", types: []*Type{NewType("dog"), NewType("cat"), NewType("dog")}, want: ErrTypeExists},
		{name: "name already registered", types: []*Type{NewType("dog"), NewType("kennel")}, want: ErrTypeExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog()
			require.NoError(t, c.Register(NewType("kennel")))

			assert.ErrorIs(t, c.Register(tt.types...), tt.want)
			assert.Equal(t, []string{"kennel"}, c.Names())
			_, ok := c.Lookup("dog")
			assert.False(t, ok)
		})
	}
}

func TestCatalog_RejectsInvalidPhrase(t *testing.T) {
	c := NewCatalog()
	typ := NewType("broken", Handlers(
		Bare(story.Given, "nospace", func(_ *base) error { return nil }),
	))
	err := c.Register(typ)
	assert.ErrorIs(t, err, ErrInvalidPhrase)
	_, ok := c.Lookup("broken")
	assert.False(t, ok)
}

func TestCatalog_RejectsHandlerWithoutFunction(t *testing.T) {
	c := NewCatalog()
	typ := NewType("hollow", Handlers(Handler{Role: story.When, Phrase: "it runs &x"}))
	assert.ErrorIs(t, c.Register(typ), ErrInvalidPhrase)
}

func TestCatalog_RejectsUnnamedAndNil(t *testing.T) {
	c := NewCatalog()
	assert.Error(t, c.Register(NewType("")))
	assert.Error(t, c.Register(nil))
}
