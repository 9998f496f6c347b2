package reflect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var typeKeyCache sync.Map

func TypeKey[T any]() string {
	return typeKeyFromReflect(typeOf[T]())
}

func TypeKeyNamed[T any](name string) string {
	return Named(TypeKey[T](), name)
}

func TypeKeyFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeKeyFromReflect(reflect.TypeOf(v))
}

func TypeKeyNamedFromValue(v any, name string) string {
	return Named(TypeKeyFromValue(v), name)
}

func TypeKeyFromType(t reflect.Type) string {
	return typeKeyFromReflect(t)
}

// Named joins a type key and a name the way every named key in the container
// is spelled.
func Named(key, name string) string {
	if name == "" {
		return key
	}
	return key + "#" + name
}

func TypeName[T any]() string {
	return typeOf[T]().String()
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typeKeyFromReflect(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

type Field struct {
	Name     string
	Index    int
	TypeKey  string
	Named    string
	Optional bool
}

// Key is the container key the field resolves from.
func (f Field) Key() string {
	return Named(f.TypeKey, f.Named)
}

// StructFields returns the exported fields of T (or *T) carrying tag. The tag
// value is "name,optional" where both parts may be empty.
func StructFields[T any](tag string) ([]Field, error) {
	t := typeOf[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct type", t)
	}

	var fields []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		value, ok := sf.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("field %s.%s is tagged but unexported", t.Name(), sf.Name)
		}

		name, opts, _ := strings.Cut(value, ",")
		fields = append(
			fields, Field{
				Name:     sf.Name,
				Index:    i,
				TypeKey:  typeKeyFromReflect(sf.Type),
				Named:    strings.TrimSpace(name),
				Optional: strings.TrimSpace(opts) == "optional",
			},
		)
	}
	return fields, nil
}

type Param struct {
	Index   int
	Type    reflect.Type
	TypeKey string
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FuncParams inspects a constructor. It must be a function returning T or
// (T, error).
func FuncParams(fn any) ([]Param, reflect.Type, error) {
	if fn == nil {
		return nil, nil, fmt.Errorf("constructor is nil")
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return nil, nil, fmt.Errorf("constructor must be a function, got %s", t)
	}
	if t.IsVariadic() {
		return nil, nil, fmt.Errorf("variadic constructors are not supported: %s", t)
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return nil, nil, fmt.Errorf("second return value of %s must be error", t)
		}
	default:
		return nil, nil, fmt.Errorf("constructor must return (T) or (T, error), got %s", t)
	}

	params := make([]Param, t.NumIn())
	for i := range t.NumIn() {
		in := t.In(i)
		params[i] = Param{
			Index:   i,
			Type:    in,
			TypeKey: typeKeyFromReflect(in),
		}
	}

	return params, t.Out(0), nil
}
