package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/vschema/pkg/reactive"
)

// GetMember reads obj[key]. Maps, slices, arrays, strings, structs and
// pointers to structs are supported; struct lookups try the exact field
// name, the exported spelling and the json tag, then methods. A missing
// member yields nil.
func GetMember(obj, key any) any {
	if obj == nil {
		return nil
	}
	name := propertyName(key)

	switch o := obj.(type) {
	case map[string]any:
		return o[name]
	case []any:
		if name == "length" {
			return len(o)
		}
		if i, ok := indexOf(key, len(o)); ok {
			return o[i]
		}
		return nil
	case string:
		if name == "length" {
			return utf8.RuneCountInString(o)
		}
		runes := []rune(o)
		if i, ok := indexOf(key, len(runes)); ok {
			return string(runes[i])
		}
		return nil
	}

	rv := reflect.ValueOf(obj)
	if m := methodByName(rv, name); m.IsValid() {
		return m.Interface()
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len()
		}
		if i, ok := indexOf(key, rv.Len()); ok {
			return rv.Index(i).Interface()
		}
	case reflect.Struct:
		if f, ok := fieldByName(rv, name); ok && f.CanInterface() {
			return f.Interface()
		}
		if m := methodByName(rv, name); m.IsValid() {
			return m.Interface()
		}
	}
	return nil
}

// SetMember writes obj[key] = value. When the current member is a reactive
// box the value is assigned into the box instead of replacing it.
func SetMember(obj, key, value any) error {
	if obj == nil {
		return fmt.Errorf("cannot set property %q of nil", propertyName(key))
	}
	name := propertyName(key)

	if current := GetMember(obj, key); current != nil {
		if ref, ok := current.(reactive.Ref); ok {
			return ref.Assign(value)
		}
	}

	switch o := obj.(type) {
	case map[string]any:
		o[name] = value
		return nil
	case []any:
		i, ok := indexOf(key, len(o))
		if !ok {
			return fmt.Errorf("index %v out of range", key)
		}
		o[i] = value
		return nil
	}

	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("cannot set property %q on %T", name, obj)
		}
		v, err := convertValue(value, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), v)
		return nil
	case reflect.Pointer:
		if rv.IsNil() {
			return fmt.Errorf("cannot set property %q of nil %T", name, obj)
		}
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct {
			f, ok := fieldByName(elem, name)
			if !ok || !f.CanSet() {
				return fmt.Errorf("%T has no settable field %q", obj, name)
			}
			v, err := convertValue(value, f.Type())
			if err != nil {
				return err
			}
			f.Set(v)
			return nil
		}
		return SetMember(elem.Interface(), key, value)
	case reflect.Slice:
		i, ok := indexOf(key, rv.Len())
		if !ok {
			return fmt.Errorf("index %v out of range", key)
		}
		v, err := convertValue(value, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.Index(i).Set(v)
		return nil
	}
	return fmt.Errorf("cannot set property %q on %T", name, obj)
}

// propertyName renders a member key as a property name.
func propertyName(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case nil:
		return "undefined"
	}
	return ToString(key)
}

// indexOf converts key to an in-range integer index.
func indexOf(key any, length int) (int, bool) {
	var f float64
	switch k := key.(type) {
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}
		f = float64(n)
	default:
		n, ok := numberValue(key)
		if !ok {
			return 0, false
		}
		f = n
	}
	if f != math.Trunc(f) || f < 0 || int(f) >= length {
		return 0, false
	}
	return int(f), true
}

// fieldByName finds an exported struct field by exact name, capitalized
// name or json tag.
func fieldByName(rv reflect.Value, name string) (reflect.Value, bool) {
	if name == "" {
		return reflect.Value{}, false
	}
	t := rv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index), true
	}
	if exported := exportedName(name); exported != name {
		if f, ok := t.FieldByName(exported); ok && f.IsExported() {
			return rv.FieldByIndex(f.Index), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// methodByName returns the bound method value for name, trying the exported
// spelling as well.
func methodByName(rv reflect.Value, name string) reflect.Value {
	if !rv.IsValid() || name == "" {
		return reflect.Value{}
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m
	}
	if exported := exportedName(name); exported != name {
		return rv.MethodByName(exported)
	}
	return reflect.Value{}
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// convertValue converts v for assignment to a value of type t.
func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if _, ok := numberValue(v); ok && isNumericKind(t.Kind()) {
		return rv.Convert(t), nil
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(ToString(v)).Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
