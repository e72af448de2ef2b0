package ioc

import (
	"fmt"
	"reflect"
)

// Invoke calls a method on object through the container, with the object's
// type identity installed as the consumer context. Inject calls inside the
// method body resolve through the contextual-override machinery exactly as if
// the object were being built by the container. The method's return values
// come back as a slice; a trailing non-nil error return is split off.
func (c *Container) Invoke(object any, method string, args ...any) ([]any, error) {
	v := reflect.ValueOf(object)
	m := v.MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("no method %q on %T", method, object)
	}

	consumer := typeKey{typ: reflect.TypeOf(object)}
	_, restore, err := c.enterInvocation(consumer)
	if err != nil {
		return nil, err
	}
	defer restore()

	in, err := reflectArgs(m.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("cannot invoke %s.%s: %w", renderKey(consumer), method, err)
	}

	out := m.Call(in)
	results := make([]any, 0, len(out))
	for _, o := range out {
		results = append(results, o.Interface())
	}
	if len(results) > 0 {
		if callErr, ok := results[len(results)-1].(error); ok && callErr != nil {
			return results[:len(results)-1], callErr
		}
	}
	return results, nil
}

// Construct calls the constructor behind a Ctor key with the supplied
// arguments, the constructor's identity installed as the consumer context.
// Missing required arguments fail with RequiredArgumentsError.
func (c *Container) Construct(key Key, args ...any) (any, error) {
	ck, ok := key.(*ctorKey)
	if !ok {
		return nil, fmt.Errorf("cannot construct %s: not a constructor key", renderKey(key))
	}
	if !ck.typ.IsVariadic() && len(args) < ck.typ.NumIn() {
		return nil, &RequiredArgumentsError{Key: ck, NumArgs: ck.typ.NumIn()}
	}

	_, restore, err := c.enterInvocation(ck)
	if err != nil {
		return nil, err
	}
	defer restore()

	in, err := reflectArgs(ck.typ, args)
	if err != nil {
		return nil, fmt.Errorf("cannot construct %s: %w", renderKey(ck), err)
	}
	return callConstructor(ck, in)
}

// enterInvocation installs the per-call contextual resolver with consumer as
// the current build context, returning the handle and the cleanup restoring
// the previous state.
func (c *Container) enterInvocation(consumer Key) (*Container, func(), error) {
	st := c.build
	if st == nil {
		st = newBuildState()
	}
	if err := st.push(consumer); err != nil {
		return nil, nil, err
	}
	handle := &Container{reg: c.reg, scope: c.scope, build: st}
	restoreFrame := pushFrame(&resolverFrame{c: handle})
	return handle, func() {
		restoreFrame()
		st.pop()
	}, nil
}

// reflectArgs converts call arguments, letting nil stand in for the zero
// value of the parameter type.
func reflectArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	if !fnType.IsVariadic() && len(args) != fnType.NumIn() {
		return nil, fmt.Errorf("expected %d argument(s), got %d", fnType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			var paramType reflect.Type
			if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
				paramType = fnType.In(fnType.NumIn() - 1).Elem()
			} else {
				paramType = fnType.In(i)
			}
			in[i] = reflect.Zero(paramType)
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in, nil
}

// callConstructor invokes a constructor and normalizes the (T) and
// (T, error) return shapes.
func callConstructor(k *ctorKey, args []reflect.Value) (any, error) {
	out := k.fn.Call(args)
	switch len(out) {
	case 1:
		return out[0].Interface(), nil
	case 2:
		if !out[1].IsNil() {
			if err, ok := out[1].Interface().(error); ok {
				return nil, err
			}
			return nil, fmt.Errorf("constructor %s second return value is not an error", renderKey(k))
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("constructor %s must return a value or a (value, error) pair", renderKey(k))
	}
}
