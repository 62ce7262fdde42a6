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

// Package pec registers the PEC comma-delimited csv loader into the
// default registry.
package pec

import "github.com/jepegit/cellpy-go/pkg/loader"

const instrumentName = "pec-csv"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".csv",
	RenameHeaders: map[string]string{
		"Data Point":    "data_point",
		"Cycle Number":  "cycle_index",
		"Step Number":   "step_index",
		"Test Time (s)": "test_time",
		"Current (A)":   "current",
		"Voltage (V)":   "voltage",
		"Capacity (Ah)": "capacity",
		"Step Type":     "state",
	},
	States: map[string]string{
		"charge": "CHG",
	},
	RawUnits: map[string]string{
		"current": "A",
		"charge":  "Ah",
		"voltage": "V",
		"time":    "sec",
		"mass":    "g",
	},
	Formatters: loader.Formatters{
		Delimiter: ",",
		Encoding:  "utf-8",
	},
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewTxtLoader(instrumentName, defaultConfig)
	}, ".csv")
}
