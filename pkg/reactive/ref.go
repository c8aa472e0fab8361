package reactive

import (
	"fmt"
	"reflect"
)

// Ref is a type-erased reactive box.
type Ref interface {
	// Unbox returns the current value without subscribing.
	Unbox() any

	// Assign stores v, converting it to the box's element type when possible.
	Assign(v any) error
}

// Unbox returns the boxed value when v is a Ref and v itself otherwise.
// Nested boxes are unwrapped until a raw value is reached.
func Unbox(v any) any {
	for {
		ref, ok := v.(Ref)
		if !ok {
			return v
		}
		v = ref.Unbox()
	}
}

// IsRef reports whether v is a reactive box.
func IsRef(v any) bool {
	_, ok := v.(Ref)
	return ok
}

// Identity is an unboxer for hosts without reactive values.
func Identity(v any) any { return v }

// convertTo converts v to T. Numeric kinds convert between each other; any
// other mismatch is an error.
func convertTo[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return rv.Interface().(T), nil
	}
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, fmt.Errorf("reactive: cannot assign %T to %s", v, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
