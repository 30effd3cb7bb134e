// Package zoo holds demo target types for stories: animals, dogs, and the
// houses they keep clean or not.
package zoo

import (
	"github.com/eykd/storytest-go/internal/expect"
	"github.com/eykd/storytest-go/internal/handler"
	"github.com/eykd/storytest-go/internal/snapshot"
)

// HoldHours is how long a dog can stay inside before the house suffers.
const HoldHours = 10

// House is where a dog lives.
type House struct {
	Condition string
	Messes    int
}

// Copy returns an independent copy of the house.
func (h *House) Copy() any {
	c := *h
	return &c
}

// Animal is the ancestor of every dog.
type Animal struct {
	age int
}

// Age returns the animal's age in years.
func (a *Animal) Age() int { return a.age }

// Dog can be walked or left inside.
type Dog struct {
	Animal
	house *House
	walks []int
}

func newDog() *Dog {
	return &Dog{house: &House{Condition: "clean"}}
}

// House returns the dog's house.
func (d *Dog) House() *House { return d.house }

// Walks returns the length of each walk, in hours.
func (d *Dog) Walks() []int { return d.walks }

func (d *Dog) leftInside(hours int) {
	if hours > HoldHours {
		d.house.Condition = "smelly"
		d.house.Messes++
	}
}

// TidyDog lives with someone who cleans.
type TidyDog struct {
	Dog
	cleanings int
}

// Cleanings returns how many times the house was cleaned.
func (t *TidyDog) Cleanings() int { return t.cleanings }

// Kennel has no Given of its own; stories reach its dogs through nesting.
type Kennel struct {
	name string
	dogs int
}

// KennelDog is a dog that can only be built inside a kennel.
type KennelDog struct {
	Dog
	kennel *Kennel
}

// Kennel returns the enclosing kennel.
func (k *KennelDog) Kennel() *Kennel { return k.kennel }

// Types declares the zoo's target types.
func Types() []*handler.Type {
	animal := handler.NewType("Animal",
		handler.Constructor(func() *Animal { return &Animal{} }),
		handler.Handlers(
			handler.Given("an Animal of age &age", func(a *Animal, age int) error {
				a.age = age
				return nil
			}),
			handler.When("the animal has a birthday, and the number of years is &years", func(a *Animal, years int) error {
				a.age += years
				return nil
			}),
			handler.Then("the animal's age is &age", func(a *Animal, age int) error {
				return expect.Equal(a.age, age)
			}),
		),
	)

	dog := handler.NewType("Dog",
		handler.Constructor(newDog),
		handler.Extends(animal, func(d *Dog) *Animal { return &d.Animal }),
		handler.Handlers(
			handler.Given("a Dog of age &age", func(d *Dog, age int) error {
				d.age = age
				return nil
			}),
			handler.When("the dog is not taken out for a walk, and the number of hours is &hours", func(d *Dog, hours int) error {
				d.leftInside(hours)
				return nil
			}),
			handler.When("the dog is taken out for a walk, and the number of hours is &hours", func(d *Dog, hours int) error {
				d.walks = append(d.walks, hours)
				return nil
			}),
			handler.Then("the house condition is &condition", func(d *Dog, condition string) error {
				return expect.Equal(d.house.Condition, condition)
			}),
			handler.Then("the number of walks is &walks", func(d *Dog, walks int) error {
				return expect.Equal(len(d.walks), walks)
			}),
		),
	)

	tidy := handler.NewType("TidyDog",
		handler.Constructor(func() *TidyDog { return &TidyDog{Dog: *newDog()} }),
		handler.Extends(dog, func(t *TidyDog) *Dog { return &t.Dog }),
		handler.Handlers(
			handler.When("the house is cleaned, and the number of hours is &hours", func(t *TidyDog, _ int) error {
				t.house.Condition = "clean"
				t.cleanings++
				return nil
			}),
			handler.Then("the number of cleanings is &n", func(t *TidyDog, n int) error {
				return expect.Equal(t.cleanings, n)
			}),
		),
	)

	kennel := handler.NewType("Kennel",
		handler.Constructor(func() *Kennel { return &Kennel{name: "HappyTails"} }),
	)

	kennelDog := handler.NewType("KennelDog",
		handler.Enclosed(kennel, func(k *Kennel) *KennelDog {
			k.dogs++
			return &KennelDog{Dog: *newDog(), kennel: k}
		}),
		handler.Extends(dog, func(k *KennelDog) *Dog { return &k.Dog }),
		handler.Handlers(
			handler.Given("a Dog that his age is &age", func(k *KennelDog, age int) error {
				k.age = age
				return nil
			}),
			handler.Then("the kennel is &name", func(k *KennelDog, name string) error {
				return expect.Equal(k.kennel.name, name)
			}),
		),
	)

	return []*handler.Type{animal, dog, tidy, kennel, kennelDog}
}

// NewCatalog registers the zoo's types in a fresh catalog.
func NewCatalog() (*handler.Catalog, error) {
	c := handler.NewCatalog()
	if err := c.Register(Types()...); err != nil {
		return nil, err
	}
	return c, nil
}

// Copiers returns copy constructors for zoo state that is not Copyable.
func Copiers() *snapshot.Copiers {
	c := snapshot.NewCopiers()
	snapshot.Register(c, func(k *Kennel) *Kennel {
		cp := *k
		return &cp
	})
	return c
}
