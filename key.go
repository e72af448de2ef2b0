package ioc

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

type (
	// Key addresses a binding in the container.
	//
	// Keys have identity semantics: two keys are the same binding address only
	// if they are the same value, never because they happen to share a debug
	// name. Three kinds of keys exist:
	//   - *Token[T], an opaque handle created with NewToken
	//   - a type key created with Of[T]()
	//   - a constructor key created with Ctor(fn)
	Key interface {
		DebugName() string
	}

	// Token is an opaque binding key carrying a phantom type T and a debug
	// name. Tokens compare by reference: two tokens created with the same name
	// are distinct keys.
	Token[T any] struct {
		name string
	}

	// typeKey addresses a binding by type identity. reflect.Type values are
	// canonical, so plain comparison gives us identity semantics for free.
	typeKey struct {
		typ reflect.Type
	}

	// ctorKey addresses a binding by the identity of a constructor function.
	// Instances are interned by code pointer so that Ctor(NewFoo) always
	// returns the same key for the same function.
	ctorKey struct {
		fn   reflect.Value
		typ  reflect.Type
		name string
	}
)

// NewToken creates a fresh binding key. The name is only used in error
// messages and logs.
func NewToken[T any](name string) *Token[T] {
	return &Token[T]{name: name}
}

func (t *Token[T]) DebugName() string {
	return t.name
}

func (t *Token[T]) String() string {
	return renderKey(t)
}

// Of returns the key addressing bindings by the type T itself.
//
// For struct and pointer-to-struct types the key doubles as a zero-argument
// default factory. For interface types it additionally acts as a capability
// registration point for resolving callbacks: a callback registered on
// Of[I]() fires for every produced value satisfying I.
func Of[T any]() Key {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		typ = reflect.TypeOf((*T)(nil)).Elem()
	}
	return typeKey{typ: typ}
}

func (k typeKey) DebugName() string {
	return k.typ.String()
}

func (k typeKey) String() string {
	return renderKey(k)
}

var ctorKeys sync.Map // code pointer -> *ctorKey

// Ctor returns the key addressing bindings by the identity of the given
// constructor function. The function may take no parameters and must return
// either a single value or a (value, error) pair. Constructors declaring
// parameters can still be addressed with Ctor but cannot be constructed
// implicitly; use Construct or bind a factory for them.
func Ctor(fn any) Key {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("ioc: Ctor expects a function, got %T", fn))
	}
	ptr := v.Pointer()
	if existing, ok := ctorKeys.Load(ptr); ok {
		return existing.(*ctorKey)
	}
	k := &ctorKey{fn: v, typ: v.Type(), name: funcName(v)}
	actual, _ := ctorKeys.LoadOrStore(ptr, k)
	return actual.(*ctorKey)
}

func (k *ctorKey) DebugName() string {
	return k.name
}

func (k *ctorKey) String() string {
	return renderKey(k)
}

func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return v.Type().String()
	}
	name := f.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// renderKey formats a key the way it appears in error messages.
func renderKey(k Key) string {
	return "[" + k.DebugName() + "]"
}

func renderChain(keys []Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = renderKey(k)
	}
	return strings.Join(parts, " -> ")
}
