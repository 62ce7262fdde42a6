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

// Package newaretxt registers the Neware delimited-text loader variant
// ("txt-delimited", Neware flavor) into the default registry. Neware's
// text export is comma-delimited with an ISO-8859-1 encoded header, unlike
// Maccor's tab/semicolon export, so it gets its own Config rather than
// sharing maccortxt's.
package newaretxt

import "github.com/jepegit/cellpy-go/pkg/loader"

const instrumentName = "neware-txt"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".csv",
	RenameHeaders: map[string]string{
		"DataPoint":     "data_point",
		"Cycle Index":   "cycle_index",
		"Steps":         "step_index",
		"Total Time":    "test_time",
		"Current(mA)":   "current",
		"Voltage(V)":    "voltage",
		"Capacity(mAh)": "capacity",
		"Oneset Date":   "date_time",
		"Step Type":     "state",
	},
	States: map[string]string{
		"charge": "CC Chg",
	},
	RawUnits: map[string]string{
		"current": "mA",
		"charge":  "mAh",
		"voltage": "V",
		"time":    "sec",
		"mass":    "mg",
	},
	Formatters: loader.Formatters{
		Delimiter: ",",
		Encoding:  "iso-8859-1",
	},
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewTxtLoader(instrumentName, defaultConfig)
	}, ".csv")
}
