// Package config loads environment-driven configuration structs through
// Viper and binds them into a container.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/beynacjs/ioc"
	"github.com/beynacjs/ioc/option"
	"github.com/beynacjs/ioc/str"
)

type (
	// Options configures a Load call.
	Options struct {
		prefix string
	}

	// WithDefault lets a configuration struct fill in its own defaults after
	// loading.
	WithDefault interface {
		ApplyDefault()
	}
)

// WithEnvPrefix namespaces every environment variable consulted during Load.
func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// Load populates a configuration struct of type T from the environment.
// Field names follow mapstructure tags; nesting maps to underscore-joined,
// upper-cased variable names under the optional prefix.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg T
	bindEnvs(v, options.prefix, reflect.New(reflect.TypeOf(cfg)).Elem().Interface())

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if withDefault, ok := any(&cfg).(WithDefault); ok {
		withDefault.ApplyDefault()
	}

	return &cfg, nil
}

// Provide loads a configuration struct and binds it into the container as a
// singleton under the given key.
func Provide[T any](c *ioc.Container, key ioc.Key, opts ...option.Option[Options]) (*T, error) {
	cfg, err := Load[T](opts...)
	if err != nil {
		return nil, err
	}
	if err := c.SingletonInstance(key, cfg); err != nil {
		return nil, fmt.Errorf("unable to bind config %s: %w", key.DebugName(), err)
	}
	return cfg, nil
}

// bindEnvs registers every leaf field with viper so AutomaticEnv picks the
// variables up even before any value is set.
func bindEnvs(viperI *viper.Viper, envPrefix string, myStruct any, parts ...string) {
	ifv := reflect.ValueOf(myStruct)
	ift := reflect.TypeOf(myStruct)
	if ift == nil || ift.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = t.Name
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(viperI, envPrefix, v.Interface(), append(parts, tv)...)
		case reflect.Pointer:
			if t.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(viperI, envPrefix, reflect.Zero(t.Type.Elem()).Interface(), append(parts, tv)...)
			}
		default:
			key := strings.Join(append(parts, tv), ".")
			envKey := str.ToScreamingSnakeCase(strings.ReplaceAll(key, ".", "_"))
			if envPrefix != "" {
				envKey = envPrefix + "_" + envKey
			}
			_ = viperI.BindEnv(key, envKey)
		}
	}
}
