package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/manifest"
	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

var (
	rootOpts = struct {
		manifest string
	}{}

	rootCmd = &cobra.Command{
		Use:   "objmodel",
		Short: "Inspect compiled guest types and objects",
		Long: `objmodel loads a type manifest produced by the guest compiler and answers
reflective questions about it: method overload resolution, constant lookup,
field enumeration in print, dump and array-cast form, and object snapshots.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.manifest, "manifest", "m", env.Str(config.EnvManifest),
		"type manifest (default: "+config.ManifestFileName+" in the current or a parent directory, $"+config.EnvManifest+")")
}

// loadRuntime builds a runtime context from the manifest selected on the
// command line.
func loadRuntime() (*evaluator.Context, error) {
	path := rootOpts.manifest
	if path == "" {
		found, err := manifest.Find(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return nil, fmt.Errorf("no %s found, pass --manifest", config.ManifestFileName)
		}
		path = found
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	reg := symbols.NewRegistry()
	if _, err := m.Build(reg); err != nil {
		return nil, err
	}
	return evaluator.NewContext(reg), nil
}

func lookupCaller(rt *evaluator.Context, name string) (*typesystem.TypeDescriptor, error) {
	if name == "" {
		return nil, nil
	}
	return rt.Registry.Resolve(name)
}

// assignments parses key=value pairs. Values are JSON; anything that does not
// parse is taken as a string.
func assignments(pairs []string) ([]string, []evaluator.Value, error) {
	var (
		keys   []string
		values []evaluator.Value
	)
	for _, pair := range pairs {
		k, raw, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		v, err := evaluator.ParseJSON([]byte(raw))
		if err != nil {
			v = raw
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}
