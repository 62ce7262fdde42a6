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

// Package custominstrument implements the "custom" loader: its descriptor
// is read from a user-supplied yaml file rather than being wired in at
// compile time, so this package has no fixed Config and instead exposes a
// constructor.
package custominstrument

import "github.com/jepegit/cellpy-go/pkg/loader"

const instrumentName = "custom"

// New returns a Loader whose Config descriptor is read from yamlPath. It is
// not registered into loader.Default by name (there is no single compiled
// descriptor to register) - callers select it via loader.ByPath on a yaml
// file, or call New directly.
func New(yamlPath string) (loader.Loader, error) {
	return loader.NewCustomLoader(yamlPath)
}

// Name is the instrument name every descriptor handled by this package must
// declare via its "instrument" field.
const Name = instrumentName
