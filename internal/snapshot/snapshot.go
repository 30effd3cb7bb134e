// Package snapshot captures and restores the fields of a target instance so a
// failed assertion can roll the target back to its state before a When-run.
//
// Each field is copied best-effort, in order of preference:
//
//  1. values implementing Copyable produce their own copy;
//  2. a copier registered for the field's type, or the built-in copier for
//     slices and maps, builds a new container from the old one;
//  3. otherwise the value is stored as is.
//
// An interface value is copied at the tier of the value it holds.
//
// Tier 3 is a true copy for scalars, strings, arrays and plain structs. For
// pointers, channels, funcs and interfaces holding them it stores a
// reference, so later mutation through that reference is not rolled back.
// That aliasing is accepted behaviour.
package snapshot

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// ErrRestore wraps every failure to write a snapshot back.
var ErrRestore = errors.New("snapshot restore failed")

// Copyable is implemented by values that know how to copy themselves.
// Copy must return a value assignable to the field holding the receiver.
type Copyable interface {
	Copy() any
}

// Tier records how a field value was copied.
type Tier int

const (
	// TierReference means the value was stored as is.
	TierReference Tier = iota
	// TierCopier means a registered or built-in copier produced the value.
	TierCopier
	// TierCopyable means the value's own Copy method produced it.
	TierCopyable
)

func (t Tier) String() string {
	switch t {
	case TierCopyable:
		return "copyable"
	case TierCopier:
		return "copier"
	default:
		return "reference"
	}
}

// Field describes one captured field.
type Field struct {
	Name string
	Tier Tier
}

type capturedField struct {
	index int
	name  string
	value reflect.Value
	tier  Tier
}

// Snapshot holds copies of the fields declared directly on one struct type.
type Snapshot struct {
	typ     reflect.Type
	fields  []capturedField
	copiers *Copiers
}

// Fields lists the captured fields in declaration order.
func (s *Snapshot) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = Field{Name: f.name, Tier: f.tier}
	}
	return out
}

func structOf(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("snapshot target must be a non-nil pointer to a struct, got %T", target)
	}
	return v.Elem(), nil
}

// accessible returns a settable view of an addressable struct field,
// including unexported ones.
func accessible(f reflect.Value) reflect.Value {
	if f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// Capture copies every field declared directly on the struct target points
// to. Embedded fields belong to ancestor types and are skipped.
// copiers may be nil.
func Capture(target any, copiers *Copiers) (*Snapshot, error) {
	sv, err := structOf(target)
	if err != nil {
		return nil, err
	}
	st := sv.Type()
	snap := &Snapshot{typ: st, copiers: copiers}
	for i := range st.NumField() {
		sf := st.Field(i)
		if sf.Anonymous {
			continue
		}
		value, tier := copiers.copyValue(accessible(sv.Field(i)))
		snap.fields = append(snap.fields, capturedField{index: i, name: sf.Name, value: value, tier: tier})
	}
	return snap, nil
}

// Restore writes each captured field back onto target in place. The snapshot
// stays valid: each restore writes a fresh copy of the captured value.
func Restore(target any, snap *Snapshot) (err error) {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrRestore)
	}
	sv, err := structOf(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRestore, err)
	}
	if sv.Type() != snap.typ {
		return fmt.Errorf("%w: snapshot of %s cannot restore %s", ErrRestore, snap.typ, sv.Type())
	}

	var current string
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: field %s: %v", ErrRestore, current, r)
		}
	}()
	for _, f := range snap.fields {
		current = f.name
		value := f.value
		if f.tier != TierReference {
			value, _ = snap.copiers.copyValue(f.value)
		}
		accessible(sv.Field(f.index)).Set(value)
	}
	return nil
}
