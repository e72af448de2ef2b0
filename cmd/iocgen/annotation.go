package main

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beynacjs/ioc/set"
)

type ProvideAnnotation struct {
	logger      *zerolog.Logger
	description string
	properties  map[string]string
}

var knownLifecycles = set.NewWithValues("transient", "singleton", "scoped")

// Lifecycle returns the declared lifecycle, defaulting to transient; an
// unknown value is warned about and replaced by the default.
func (p ProvideAnnotation) Lifecycle() string {
	lifecycle, exists := p.properties["lifecycle"]
	if !exists {
		return "transient"
	}
	if !knownLifecycles.Contains(lifecycle) {
		p.logger.Warn().Msgf("Unknown lifecycle %q, falling back to transient", lifecycle)
		return "transient"
	}
	return lifecycle
}

// Tags returns the tag names declared as tags="a,b".
func (p ProvideAnnotation) Tags() []string {
	raw, exists := p.properties["tags"]
	if !exists || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

var knownProperties = set.NewWithValues("lifecycle", "tags")

func (p ProvideAnnotation) UnknownProperties() []string {
	var unknown []string
	for key := range p.properties {
		if !knownProperties.Contains(key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func parseProvideAnnotation(logger *zerolog.Logger, docText string) ProvideAnnotation {
	lines := strings.Split(docText, "\n")

	var descriptionLines []string
	var provideLine string

	// separate the @provide line from the description
	for _, line := range lines {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, provideAnnotationTag) {
			provideLine = line
		} else if line != "" && !strings.HasPrefix(line, "@") {
			descriptionLines = append(descriptionLines, line)
		}
	}

	return ProvideAnnotation{
		logger:      logger,
		description: strings.TrimSpace(strings.Join(descriptionLines, "\n")),
		properties:  parseProperties(provideLine, provideAnnotationTag),
	}
}

func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	if line == "" {
		return properties
	}

	content := strings.TrimPrefix(line, tag)
	content = strings.TrimSpace(content)

	if content == "" {
		return properties
	}

	// match key=value or key="value" patterns
	re := regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\w+))`)
	matches := re.FindAllStringSubmatch(content, -1)

	for _, match := range matches {
		key := match[1]
		// match[2] is the quoted value, match[3] the unquoted one
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[key] = value
	}

	return properties
}
