package ioc

import (
	"fmt"
)

// BindingConfigError reports invalid arguments to Bind.
type BindingConfigError struct {
	Key    Key
	Reason string
}

func (e *BindingConfigError) Error() string {
	return fmt.Sprintf("invalid binding for %s: %s", renderKey(e.Key), e.Reason)
}

// SelfAliasError reports an alias pointing at its own key.
type SelfAliasError struct {
	Key Key
}

func (e *SelfAliasError) Error() string {
	return fmt.Sprintf("%s is aliased to itself", renderKey(e.Key))
}

// CircularAliasError reports an alias chain that revisits a key. Cycle holds
// the keys in traversal order, ending with the repeated key.
type CircularAliasError struct {
	Cycle []Key
}

func (e *CircularAliasError) Error() string {
	return "circular alias detected: " + renderChain(e.Cycle)
}

// CircularDependencyError reports a build stack that revisits a key. Cycle
// holds the cycle in build order ending with the repeated key; Building holds
// the outer build-stack frames that led into the cycle, if any.
type CircularDependencyError struct {
	Cycle    []Key
	Building []Key
}

func (e *CircularDependencyError) Error() string {
	msg := "circular dependency detected: " + renderChain(e.Cycle)
	if len(e.Building) > 0 {
		msg += " (while building " + renderChain(e.Building) + ")"
	}
	return msg
}

// UnboundKeyError reports a resolution for which no instance, factory, or
// constructable key could be found. Building holds the ancestor build-stack
// frames; the requested key's own frame is omitted, it is implied.
type UnboundKeyError struct {
	Key      Key
	Building []Key
}

func (e *UnboundKeyError) Error() string {
	msg := fmt.Sprintf("unable to resolve %s: no value or factory function was supplied", renderKey(e.Key))
	if len(e.Building) > 0 {
		msg += " (while building " + renderChain(e.Building) + ")"
	}
	return msg
}

// ScopeRequiredError reports access to a scoped binding outside any active
// scope.
type ScopeRequiredError struct {
	Key Key
}

func (e *ScopeRequiredError) Error() string {
	return fmt.Sprintf("Cannot create %s because it is scoped so can only be accessed within a request", renderKey(e.Key))
}

// RequiredArgumentsError reports an implicit construction attempted on a
// constructor that declares required parameters.
type RequiredArgumentsError struct {
	Key     Key
	NumArgs int
}

func (e *RequiredArgumentsError) Error() string {
	return fmt.Sprintf("cannot construct %s implicitly: constructor declares %d required argument(s)", renderKey(e.Key), e.NumArgs)
}

// InvalidInjectionContextError reports an Inject call made outside of any
// container-managed construction.
type InvalidInjectionContextError struct {
	Key Key
}

func (e *InvalidInjectionContextError) Error() string {
	return fmt.Sprintf("cannot inject %s: Inject may only be called during a container-managed construction", renderKey(e.Key))
}
