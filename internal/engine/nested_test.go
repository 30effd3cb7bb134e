package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/storytest-go/internal/handler"
	"github.com/eykd/storytest-go/internal/story"
)

func TestRunNested_FindsGivenOnNestedType(t *testing.T) {
	kennel := zooType(t, "Kennel")

	assert.ErrorIs(t, New().Run(nestedStory, kennel), handler.ErrGivenNotFound)
	assert.NoError(t, New().RunNested(nestedStory, kennel))
}

func TestRunNested_NestedInstanceBuiltFromEnclosing(t *testing.T) {
	text := nestedStory + "\nThen the kennel is HappyTails"
	assert.NoError(t, New().RunNested(text, zooType(t, "Kennel")))
}

func TestRunNested_FoundMeansResolvedNotPassed(t *testing.T) {
	text := "Given a Dog that his age is 6\n" +
		"When the dog is not taken out for a walk, and the number of hours is 11\n" +
		"Then the house condition is clean"

	err := New().RunNested(text, zooType(t, "Kennel"))
	var rep *Report
	require.ErrorAs(t, err, &rep)
	assert.Equal(t, "smelly", rep.Expected)
	assert.Equal(t, "clean", rep.Actual)
}

func TestRunNested_DirectMatchSkipsNesting(t *testing.T) {
	assert.NoError(t, New().RunNested(goodStory, zooType(t, "Dog")))
}

func TestRunNested_GivenNowhere(t *testing.T) {
	err := New().RunNested("Given a cat of age 3", zooType(t, "Kennel"))
	assert.ErrorIs(t, err, handler.ErrGivenNotFound)

	var nf *handler.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Kennel", nf.Type)
}

func TestRunNested_OtherErrorsAreNotRetried(t *testing.T) {
	err := New().RunNested("Given a Dog that his age is 6\nWhen the dog sings, and the number of hours is 1", zooType(t, "Kennel"))
	assert.ErrorIs(t, err, handler.ErrWhenNotFound)

	err = New().RunNested("Given Dog", zooType(t, "Kennel"))
	assert.ErrorIs(t, err, story.ErrMalformedStory)
}

func TestRunNested_SearchesDepthFirstInDeclarationOrder(t *testing.T) {
	var order []string
	record := func(owner, phrase string) handler.Handler {
		return handler.Given("the "+phrase+" starts &x", func(_ *gadget, _ string) error {
			order = append(order, owner)
			return nil
		})
	}
	newGadget := func() *gadget { return &gadget{} }
	fromOuter := func(_ *gadget) *gadget { return &gadget{} }

	// root has no constructor and no Given; it only groups nested types.
	root := handler.NewType("root")
	first := handler.NewType("first", handler.Enclosed(root, fromOuter))
	handler.NewType("deep",
		handler.Constructor(newGadget),
		handler.Enclosed(first, fromOuter),
		handler.Handlers(record("deep", "deep"), record("deep", "shared")))
	handler.NewType("second",
		handler.Constructor(newGadget),
		handler.Enclosed(root, fromOuter),
		handler.Handlers(record("second", "shared"), record("second", "second")))

	require.NoError(t, New().RunNested("Given the shared starts 1", root))
	require.NoError(t, New().RunNested("Given the second starts 1", root))
	assert.Equal(t, []string{"deep", "second"}, order)
}
