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

// Package arbinh5 registers the "h5-columnar" loader for Arbin's packed
// columnar export: a flat sequence of fixed-width little-endian float64
// columns preceded by a column-count/row-count header, with date_time
// packed as a 17-digit "YYYYMMDDHHMMSSmmm" value encoded in the same
// float64 column as any other (no general-purpose HDF5 reader exists in
// the dependency set this module draws from, so the columnar payload is
// decoded directly with encoding/binary; see the design ledger).
package arbinh5

import (
	"encoding/binary"
	"os"
	"strconv"
	"time"

	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/loader"
)

const instrumentName = "h5-columnar"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".h5",
	RawUnits: map[string]string{
		"current": "A",
		"charge":  "Ah",
		"voltage": "V",
		"time":    "sec",
		"mass":    "g",
	},
}

// columnOrder is the fixed column layout of the packed export; native
// names match cellpy's canonical set already, so no rename_headers pass is
// needed for this instrument.
var columnOrder = []string{
	"data_point", "cycle_index", "step_index", "test_time", "step_time",
	"current", "voltage", "charge_capacity", "discharge_capacity", "packed_datetime",
}

func queryH5File(path string, cfg loader.Config) (cell.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer f.Close()

	var numCols, numRows uint32
	if err := binary.Read(f, binary.LittleEndian, &numCols); err != nil {
		return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(path)
	}
	if err := binary.Read(f, binary.LittleEndian, &numRows); err != nil {
		return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(path)
	}
	if int(numCols) != len(columnOrder) {
		return nil, errs.New(errs.UnrecognizedFormat, "unexpected column count in h5-columnar export").WithPath(path)
	}

	table := make(cell.Table, numRows)
	for r := range table {
		table[r] = make(cell.Row, numCols)
	}
	buf := make([]float64, numRows)
	for _, colName := range columnOrder {
		if err := binary.Read(f, binary.LittleEndian, buf); err != nil {
			return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(path)
		}
		for r, v := range buf {
			if colName == "packed_datetime" {
				table[r]["date_time"] = unpackDateTime(v)
			} else {
				table[r][colName] = v
			}
		}
	}
	return table, nil
}

// unpackDateTime decodes the instrument's 17-digit "YYYYMMDDHHMMSSmmm"
// packed timestamp into a time.Time.
func unpackDateTime(packed float64) time.Time {
	digits := strconv.FormatFloat(packed, 'f', 0, 64)
	for len(digits) < 17 {
		digits = "0" + digits
	}
	t, err := time.Parse("20060102150405.000", digits[:14]+"."+digits[14:])
	if err != nil {
		return time.Time{}
	}
	return t
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewAutoLoader(instrumentName, defaultConfig, queryH5File)
	}, ".h5")
}
