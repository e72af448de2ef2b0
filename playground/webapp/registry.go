package main

import (
	"github.com/beynacjs/ioc"
)

//go:generate go run github.com/beynacjs/ioc/cmd/iocgen

// Registry anchors the generated provider registration for the demo app.
type Registry struct {
	ioc.EmptyRegistry
}
