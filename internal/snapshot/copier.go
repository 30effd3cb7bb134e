package snapshot

import (
	"reflect"
	"sync"
)

// Copiers maps field types to copy constructors. A nil *Copiers is valid and
// only applies the built-in slice and map copiers.
type Copiers struct {
	mu    sync.RWMutex
	funcs map[reflect.Type]func(reflect.Value) reflect.Value
}

// NewCopiers creates an empty copier table.
func NewCopiers() *Copiers {
	return &Copiers{funcs: make(map[reflect.Type]func(reflect.Value) reflect.Value)}
}

// Register installs fn as the copy constructor for values of type T.
// It replaces a previously registered copier for T.
func Register[T any](c *Copiers, fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs[reflect.TypeFor[T]()] = func(v reflect.Value) reflect.Value {
		return reflect.ValueOf(fn(v.Interface().(T)))
	}
}

func (c *Copiers) lookup(t reflect.Type) (func(reflect.Value) reflect.Value, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.funcs[t]
	return fn, ok
}

func nilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// detach returns a value of v's type that does not share v's storage.
func detach(v reflect.Value) reflect.Value {
	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	return out
}

// fit converts a copier result to the field type, reporting whether it can
// be stored there.
func fit(out reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !out.IsValid() {
		return reflect.Zero(t), true
	}
	if !out.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return detach(out.Convert(t)), true
}

// copyValue copies v using the highest tier that applies.
func (c *Copiers) copyValue(v reflect.Value) (reflect.Value, Tier) {
	t := v.Type()
	if nilable(v) {
		return detach(v), TierReference
	}

	if cp, ok := v.Interface().(Copyable); ok {
		if out, ok := fit(reflect.ValueOf(cp.Copy()), t); ok {
			return out, TierCopyable
		}
	}

	if fn, ok := c.lookup(t); ok {
		if out, ok := fit(fn(v), t); ok {
			return out, TierCopier
		}
	}

	switch t.Kind() {
	case reflect.Interface:
		inner, tier := c.copyValue(v.Elem())
		if tier == TierReference {
			break
		}
		if out, ok := fit(inner, t); ok {
			return out, tier
		}
	case reflect.Slice:
		out := reflect.MakeSlice(t, v.Len(), v.Len())
		reflect.Copy(out, v)
		return detach(out), TierCopier
	case reflect.Map:
		out := reflect.MakeMapWithSize(t, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return detach(out), TierCopier
	}

	return detach(v), TierReference
}
