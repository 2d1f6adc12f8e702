package exprel

import (
	"fmt"
	"reflect"
	"time"

	"github.com/viant/toolbox"
)

var timeType = reflect.TypeOf(time.Time{})

// Coerce converts obj to target using the built-in scalar rules. It is the
// default behavior behind Context.ConvertToType, applied after every
// TypeConverter in the chain has declined.
//
// Rules, in order: nil coerces to target's zero value; assignable values pass
// through unchanged; pointer targets allocate and coerce the element;
// strings, booleans, integers, unsigned integers, floats and time.Time use
// scalar coercion; remaining numeric kinds fall back to Go convertibility.
// Anything else fails.
func Coerce(obj any, target reflect.Type) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("exprel: cannot convert %T to a nil target type", obj)
	}
	if obj == nil {
		return reflect.Zero(target).Interface(), nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Type().AssignableTo(target) {
		return obj, nil
	}
	if target.Kind() == reflect.Pointer {
		elem, err := Coerce(obj, target.Elem())
		if err != nil {
			return nil, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(reflect.ValueOf(elem))
		return p.Interface(), nil
	}
	if target == timeType {
		t, err := toolbox.ToTime(obj, time.RFC3339)
		if err != nil {
			return nil, fmt.Errorf("exprel: cannot convert %T to time.Time: %w", obj, err)
		}
		return *t, nil
	}
	switch target.Kind() {
	case reflect.String:
		return coerced(reflect.ValueOf(toolbox.AsString(obj)), target), nil
	case reflect.Bool:
		return coerced(reflect.ValueOf(toolbox.AsBoolean(obj)), target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toolbox.ToInt(obj)
		if err != nil {
			return nil, fmt.Errorf("exprel: cannot convert %T to %s: %w", obj, target, err)
		}
		return coerced(reflect.ValueOf(i), target), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toolbox.ToInt(obj)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("exprel: cannot convert %T to %s", obj, target)
		}
		return coerced(reflect.ValueOf(uint64(i)), target), nil
	case reflect.Float32, reflect.Float64:
		f, err := toolbox.ToFloat(obj)
		if err != nil {
			return nil, fmt.Errorf("exprel: cannot convert %T to %s: %w", obj, target, err)
		}
		return coerced(reflect.ValueOf(f), target), nil
	case reflect.Interface:
		if rv.Type().Implements(target) {
			return obj, nil
		}
	}
	if rv.Type().ConvertibleTo(target) && isNumericKind(rv.Kind()) && isNumericKind(target.Kind()) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("exprel: cannot convert %T to %s", obj, target)
}

func coerced(v reflect.Value, target reflect.Type) any {
	if v.Type() == target {
		return v.Interface()
	}
	return v.Convert(target).Interface()
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

// toIndex coerces a property to a sequence index.
func toIndex(property any) (int, error) {
	switch v := property.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	}
	i, err := toolbox.ToInt(property)
	if err != nil {
		return 0, fmt.Errorf("cannot coerce %v (%T) to index: %w", property, property, err)
	}
	return i, nil
}
