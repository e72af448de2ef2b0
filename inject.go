package ioc

// resolverFrame is the call-scoped dependency resolver installed around every
// container-invoked construction. The handle it carries has the consumer key
// on top of its build stack, which is what makes contextual overrides
// context-sensitive for injected dependencies.
type resolverFrame struct {
	c *Container
}

// currentFrame is the resolver consulted by Inject. It is process-global with
// save/restore semantics: resolution is re-entrant, so frames nest like a
// stack. Inject targets the cooperative single-logical-task model; factories
// running on parallel goroutines should take dependencies from the container
// handle they receive instead.
var currentFrame *resolverFrame

// pushFrame installs frame as the current injection context and returns the
// function restoring the previous one.
func pushFrame(frame *resolverFrame) func() {
	prev := currentFrame
	currentFrame = frame
	return func() { currentFrame = prev }
}

// Inject resolves a dependency relative to the construction currently being
// performed by the container. It may only be called from inside a factory,
// constructor, or method invoked through the container; anywhere else it
// panics with InvalidInjectionContextError.
func Inject[T any](key Key) T {
	frame := currentFrame
	if frame == nil {
		panic(&InvalidInjectionContextError{Key: key})
	}
	v, err := Resolve[T](frame.c, key)
	if err != nil {
		panic(err)
	}
	return v
}

// InjectOptional is Inject for dependencies that may be absent. Absence is
// reported through the boolean, never conflated with a bound nil value.
func InjectOptional[T any](key Key) (T, bool) {
	frame := currentFrame
	if frame == nil {
		panic(&InvalidInjectionContextError{Key: key})
	}
	v, found, err := ResolveIfAvailable[T](frame.c, key)
	if err != nil {
		panic(err)
	}
	return v, found
}
