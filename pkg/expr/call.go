package expr

import (
	"fmt"
	"reflect"
)

// Method is a context function that wants to see the object it was read
// from. For a call like user.greet("hi") the method receives user as this;
// a bare call passes nil.
type Method func(this any, args ...any) (any, error)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes fn with args. Plain Go functions of any signature are
// supported through reflection: arguments are converted to parameter types
// where possible, and a trailing error result is returned as the error.
// A panic inside fn is recovered and returned as an error.
func Call(fn, this any, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch f := fn.(type) {
	case Method:
		return f(this, args...)
	case func(this any, args ...any) (any, error):
		return f(this, args...)
	case func(args ...any) any:
		return f(args...), nil
	case func(args ...any) (any, error):
		return f(args...)
	case func() any:
		return f(), nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%T is not a function", fn)
	}
	in, err := callArgs(rv.Type(), args)
	if err != nil {
		return nil, err
	}
	return callResults(rv.Call(in))
}

// IsCallable reports whether v can be passed to Call.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

func callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := t.NumIn()
	variadic := t.IsVariadic()
	fixed := numIn
	if variadic {
		fixed--
	}

	in := make([]reflect.Value, 0, max(len(args), numIn))
	for i := 0; i < fixed; i++ {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		v, err := convertArg(arg, t.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}
	if variadic {
		elem := t.In(numIn - 1).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			in = append(in, v)
		}
	}
	return in, nil
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Interface && arg == nil {
		return reflect.Zero(t), nil
	}
	if t.Kind() == reflect.Bool {
		return reflect.ValueOf(Truthy(arg)).Convert(t), nil
	}
	if isNumericKind(t.Kind()) {
		if _, ok := numberValue(arg); !ok {
			arg = ToNumber(arg)
		}
	}
	return convertValue(arg, t)
}

func callResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type().Implements(errorType) {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}
