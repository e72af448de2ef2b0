package main

import (
	"fmt"
	"go/format"
	"os"
	"sort"
	"strings"

	"github.com/beynacjs/ioc/set"
)

const iocImportPath = "github.com/beynacjs/ioc"

var lifecycleConstants = map[string]string{
	"transient": "ioc.Transient",
	"singleton": "ioc.Singleton",
	"scoped":    "ioc.Scoped",
}

// generateCode writes the registration file: a Register method on the
// registry struct binding every annotated constructor, plus one ioc.Tag
// variable per tag name seen across the annotations.
func generateCode(
	outputPath string,
	registry *RegistryDefinition,
	providers []ProviderDefinition,
) error {
	aliases := set.NewWithValues("ioc")
	importWithAlias := map[string]string{iocImportPath: "ioc"}
	for _, p := range providers {
		if _, exists := importWithAlias[p.ImportPath]; !exists {
			alias := findSuitableAlias(p.ImportPath, aliases)
			aliases.Add(alias)
			importWithAlias[p.ImportPath] = alias
		}
	}

	var sb strings.Builder
	sb.WriteString("// Code generated by iocgen. DO NOT EDIT.\n\n")
	sb.WriteString("package " + registry.PackageName + "\n\n")

	sb.WriteString("import (\n")
	importPaths := make([]string, 0, len(importWithAlias))
	for path := range importWithAlias {
		importPaths = append(importPaths, path)
	}
	sort.Strings(importPaths)
	for _, path := range importPaths {
		fmt.Fprintf(&sb, "\t%s %q\n", importWithAlias[path], path)
	}
	sb.WriteString(")\n\n")

	tagVars := collectTagVars(providers)
	if len(tagVars) > 0 {
		sb.WriteString("var (\n")
		tagNames := make([]string, 0, len(tagVars))
		for name := range tagVars {
			tagNames = append(tagNames, name)
		}
		sort.Strings(tagNames)
		for _, name := range tagNames {
			fmt.Fprintf(&sb, "\t%s = ioc.NewTag(%q)\n", tagVars[name], name)
		}
		sb.WriteString(")\n\n")
	}

	sb.WriteString("// Register binds every annotated constructor into the container.\n")
	fmt.Fprintf(&sb, "func (%s) Register(c *ioc.Container) error {\n", registry.StructName)
	for _, p := range providers {
		ctor := fmt.Sprintf("ioc.Ctor(%s.%s)", importWithAlias[p.ImportPath], p.FnName)
		if p.Description != "" {
			fmt.Fprintf(&sb, "\t// %s\n", strings.ReplaceAll(p.Description, "\n", "\n\t// "))
		}
		fmt.Fprintf(&sb, "\tif err := c.Bind(%s, ioc.WithLifecycle(%s)); err != nil {\n", ctor, lifecycleConstants[p.Lifecycle])
		sb.WriteString("\t\treturn err\n")
		sb.WriteString("\t}\n")
		for _, tag := range p.Tags {
			fmt.Fprintf(&sb, "\tc.Tag([]ioc.Key{%s}, %s)\n", ctor, tagVars[tag])
		}
	}
	sb.WriteString("\treturn nil\n")
	sb.WriteString("}\n")

	formatted, err := format.Source([]byte(sb.String()))
	if err != nil {
		return fmt.Errorf("generated code does not compile: %w", err)
	}
	return os.WriteFile(outputPath, formatted, 0o644)
}

// collectTagVars maps every tag name to a deterministic variable name.
func collectTagVars(providers []ProviderDefinition) map[string]string {
	vars := make(map[string]string)
	for _, p := range providers {
		for _, tag := range p.Tags {
			if _, exists := vars[tag]; !exists {
				vars[tag] = "tag" + exportIdentifier(tag)
			}
		}
	}
	return vars
}

// exportIdentifier turns an arbitrary tag name into a CamelCase identifier
// fragment.
func exportIdentifier(name string) string {
	var sb strings.Builder
	upperNext := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upperNext && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			sb.WriteRune(r)
			upperNext = false
		default:
			upperNext = true
		}
	}
	return sb.String()
}

// findSuitableAlias derives an import alias from the last path segment,
// prepending the first letter of the preceding segments on collision, then
// falling back to a numeric suffix.
func findSuitableAlias(importPath string, used set.Set[string]) string {
	segments := strings.Split(importPath, "/")
	candidate := sanitizeAlias(segments[len(segments)-1])
	if !used.Contains(candidate) {
		return candidate
	}
	for i := len(segments) - 2; i >= 0; i-- {
		prefix := sanitizeAlias(segments[i])
		if prefix == "" {
			continue
		}
		candidate = prefix[:1] + candidate
		if !used.Contains(candidate) {
			return candidate
		}
	}
	for i := 0; ; i++ {
		numbered := fmt.Sprintf("%s%d", candidate, i)
		if !used.Contains(numbered) {
			return numbered
		}
	}
}

// sanitizeAlias strips everything that cannot appear in an identifier.
func sanitizeAlias(segment string) string {
	var sb strings.Builder
	for _, r := range segment {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return strings.ToLower(sb.String())
}
