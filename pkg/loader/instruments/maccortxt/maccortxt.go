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

// Package maccortxt registers the Maccor tab/semicolon-delimited text
// loader ("txt-delimited", Maccor variant) into the default registry.
package maccortxt

import "github.com/jepegit/cellpy-go/pkg/loader"

const instrumentName = "maccor-txt"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".txt",
	RenameHeaders: map[string]string{
		"Rec#":     "data_point",
		"Cyc#":     "cycle_index",
		"Step":     "step_index",
		"TestTime": "test_time",
		"StepTime": "step_time",
		"Amp-hr":   "capacity",
		"Amps":     "current",
		"Volts":    "voltage",
		"DPt Time": "date_time",
		"State":    "state",
	},
	States: map[string]string{
		"charge": "C",
	},
	RawUnits: map[string]string{
		"current": "A",
		"charge":  "Ah",
		"voltage": "V",
		"time":    "sec",
		"mass":    "g",
	},
	Formatters: loader.Formatters{
		Delimiter: "\t",
		SkipRows:  3,
		Encoding:  "utf-8",
	},
	PreProcessors: []string{"remove_empty_lines"},
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewTxtLoader(instrumentName, defaultConfig)
	}, ".txt")
}
