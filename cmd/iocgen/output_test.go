package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beynacjs/ioc/set"
)

func Test_findSuitableAlias(t *testing.T) {
	t.Run("it should use the last path segment", func(t *testing.T) {
		// GIVEN
		pkg := "github.com/beynacjs/ioc/runner"
		aliases := set.NewWithValues[string]()

		// WHEN
		alias := findSuitableAlias(pkg, aliases)

		// THEN
		assert.Equal(t, "runner", alias)
	})

	t.Run("it should prepend preceding segment letters on collision", func(t *testing.T) {
		// GIVEN
		pkg := "github.com/beynacjs/ioc/runner"
		aliases := set.NewWithValues("runner")

		// WHEN
		alias := findSuitableAlias(pkg, aliases)

		// THEN
		assert.Equal(t, "irunner", alias)
	})

	t.Run("it should number the alias once every segment is exhausted", func(t *testing.T) {
		// GIVEN
		pkg := "github.com/beynacjs/ioc/runner"
		aliases := set.NewWithValues("runner", "irunner", "birunner", "gbirunner", "gbirunner0")

		// WHEN
		alias := findSuitableAlias(pkg, aliases)

		// THEN
		assert.Equal(t, "gbirunner1", alias)
	})
}

func Test_exportIdentifier(t *testing.T) {
	t.Run("it should camel-case separated words", func(t *testing.T) {
		assert.Equal(t, "BackgroundWorkers", exportIdentifier("background-workers"))
	})

	t.Run("it should keep an already clean name", func(t *testing.T) {
		assert.Equal(t, "Reports", exportIdentifier("reports"))
	})
}

func Test_generateCode(t *testing.T) {
	t.Run("it should emit a well-formed registration file", func(t *testing.T) {
		// GIVEN
		outputPath := filepath.Join(t.TempDir(), "registry_gen.go")
		registry := &RegistryDefinition{PackageName: "app", StructName: "Registry"}
		providers := []ProviderDefinition{
			{
				FnName:      "NewUserService",
				Description: "NewUserService builds the user service.",
				ImportPath:  "github.com/example/app/services",
				Lifecycle:   "singleton",
				Tags:        []string{"services"},
			},
			{
				FnName:     "NewWorker",
				ImportPath: "github.com/example/app/workers",
				Lifecycle:  "transient",
			},
		}

		// WHEN
		err := generateCode(outputPath, registry, providers)

		// THEN
		require.NoError(t, err)
		content, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		generated := string(content)
		assert.Contains(t, generated, "// Code generated by iocgen. DO NOT EDIT.")
		assert.Contains(t, generated, "package app")
		assert.Contains(t, generated, `tagServices = ioc.NewTag("services")`)
		assert.Contains(t, generated, "func (Registry) Register(c *ioc.Container) error {")
		assert.Contains(t, generated, "ioc.Ctor(services.NewUserService), ioc.WithLifecycle(ioc.Singleton)")
		assert.Contains(t, generated, "ioc.Ctor(workers.NewWorker), ioc.WithLifecycle(ioc.Transient)")
		assert.Contains(t, generated, "c.Tag([]ioc.Key{ioc.Ctor(services.NewUserService)}, tagServices)")
	})
}
