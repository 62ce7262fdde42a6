// Copyright 2024 The cellpy-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
)

// Loader is the contract every instrument implementation satisfies (spec
// §4.1): parse a file into a populated Cell, and report the unit/limit
// declarations the step classifier needs.
type Loader interface {
	// Name returns the registry key this loader is registered under, e.g.
	// "res-binary" or "maccor-txt".
	Name() string
	// Load parses path and returns a Cell with Raw and Metadata set.
	Load(path string, opts map[string]interface{}) (*cell.Cell, error)
	// RawExt is the expected filename extension, informational only.
	RawExt() string
}

// factory is the value type held per registered Loader name: a constructor
// plus the filename extensions this loader claims.
type factory struct {
	constructor func() Loader
	extensions  []string
}

// Registry is a name -> Loader mapping, built-in entries pre-registered by
// the instruments sub-packages' init() functions, generalized from the
// component-type registry pattern used elsewhere in the ecosystem for
// plug-in-style declarative dispatch.
type Registry struct {
	byName map[string]*factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*factory{}}
}

// Default is the process-wide registry; built-in instrument packages
// register themselves into it from their init() functions.
var Default = NewRegistry()

// Register adds constructor under name to r, panicking on duplicate
// registration the same way a plugin registry does at init time -
// duplicate names are a programming error, not a runtime condition.
func (r *Registry) Register(name string, constructor func() Loader, extensions ...string) {
	if _, ok := r.byName[name]; ok {
		panic(fmt.Sprintf("loader: duplicate registration for instrument %q", name))
	}
	r.byName[name] = &factory{constructor: constructor, extensions: extensions}
}

// Names returns the sorted list of registered instrument names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName looks up a loader by its exact registered name.
func (r *Registry) ByName(name string) (Loader, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, errs.New(errs.InstrumentNotFound, fmt.Sprintf("no loader registered for instrument %q; registered: [%s]", name, strings.Join(r.Names(), ", "))).WithConfig(name)
	}
	return f.constructor(), nil
}

// ByExtension looks up a loader by matching path's filename extension
// against every registered loader's claimed extensions. If more than one
// loader claims the same extension the first match in name-sorted order
// wins - ambiguous extension claims should be resolved by selecting the
// loader by exact name instead.
func (r *Registry) ByExtension(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, name := range r.Names() {
		for _, e := range r.byName[name].extensions {
			if strings.ToLower(e) == ext {
				return r.byName[name].constructor(), nil
			}
		}
	}
	return nil, errs.New(errs.UnrecognizedFormat, fmt.Sprintf("no loader claims extension %q", ext)).WithPath(path)
}

// ByPath resolves path to a Loader. If path itself is a yaml descriptor,
// its "instrument" field decides: "custom" returns a custom loader built
// from that descriptor (NewCustomLoader), any other name is looked up in r.
// Otherwise it falls back to extension-based dispatch.
func ByPath(r *Registry, path string) (Loader, error) {
	if strings.HasSuffix(strings.ToLower(path), ".yaml") || strings.HasSuffix(strings.ToLower(path), ".yml") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
		}
		cfg, err := ParseConfig(raw, "custom")
		if err != nil {
			return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(path)
		}
		if cfg.Instrument == "custom" {
			l, err := NewCustomLoader(path)
			if err != nil {
				return nil, err
			}
			return l, nil
		}
		return r.ByName(cfg.Instrument)
	}
	return r.ByExtension(path)
}
