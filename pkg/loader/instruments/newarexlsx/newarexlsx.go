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

// Package newarexlsx registers the Neware xlsx loader: the instrument
// exports three sheets per test (step, record, unit); this loader builds the
// raw table from the record sheet alone and does not read the other two.
package newarexlsx

import (
	"strconv"

	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/loader"
	"github.com/xuri/excelize/v2"
)

const instrumentName = "neware-xlsx"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".xlsx",
	RenameHeaders: map[string]string{
		"Record ID":     "data_point",
		"Cycle ID":       "cycle_index",
		"Step ID":        "step_index",
		"Relative Time":  "test_time",
		"Current(mA)":    "current",
		"Voltage(V)":     "voltage",
		"Capacity(mAh)":  "capacity",
	},
	States: map[string]string{
		"charge": "CC_Chg",
	},
	RawUnits: map[string]string{
		"current": "mA",
		"charge":  "mAh",
		"voltage": "V",
		"time":    "sec",
		"mass":    "mg",
	},
}

// recordSheet is the sheet holding the per-row time-series the raw table is
// built from; the step and unit sheets carry step-level/metadata
// information that the loader framework does not need at raw-load time.
const recordSheet = "record"

func queryXlsxFile(path string, cfg loader.Config) (cell.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer f.Close()

	rows, err := f.GetRows(recordSheet)
	if err != nil {
		return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(path)
	}
	if len(rows) < 2 {
		return nil, errs.New(errs.UnrecognizedFormat, "record sheet has no data rows").WithPath(path)
	}

	columns := rows[0]
	table := make(cell.Table, 0, len(rows)-1)
	for _, r := range rows[1:] {
		row := make(cell.Row, len(columns))
		for i, col := range columns {
			if i >= len(r) {
				break
			}
			if v, err := strconv.ParseFloat(r[i], 64); err == nil {
				row[col] = v
			} else {
				row[col] = r[i]
			}
		}
		table = append(table, row)
	}
	return table, nil
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewAutoLoader(instrumentName, defaultConfig, queryXlsxFile)
	}, ".xlsx")
}
