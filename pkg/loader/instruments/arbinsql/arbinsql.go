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

// Package arbinsql registers the "sql-table" loader: an Arbin test
// database reached directly over ODBC rather than through an exported
// .res file. The driver itself is supplied by the caller's blank import
// (e.g. an ODBC or SQL Server driver registered with database/sql); this
// package only knows the table layout and the query to run.
package arbinsql

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jepegit/cellpy-go/internal/cellpylog"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/loader"
	"github.com/jepegit/cellpy-go/pkg/quantity"
	"github.com/mitchellh/mapstructure"
)

// columnRename maps TestData_Normal_Table's column names to the canonical
// raw-table headers every other loader normalizes into.
var columnRename = map[string]string{
	"Data_Point":         "data_point",
	"Cycle_Index":        "cycle_index",
	"Step_Index":         "step_index",
	"Test_Time":          "test_time",
	"Step_Time":          "step_time",
	"Current":            "current",
	"Voltage":            "voltage",
	"Charge_Capacity":    "charge_capacity",
	"Discharge_Capacity": "discharge_capacity",
	"Date_Time":          "date_time",
}

const instrumentName = "sql-table"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".sql",
	RawUnits: map[string]string{
		"current": "A",
		"charge":  "Ah",
		"voltage": "V",
		"time":    "sec",
		"mass":    "g",
	},
}

const normalTableQuery = `
SELECT Data_Point, Cycle_Index, Step_Index, Test_Time, Step_Time,
       Current, Voltage, Charge_Capacity, Discharge_Capacity, Date_Time
FROM TestData_Normal_Table
WHERE Test_ID = ?
ORDER BY Data_Point`

// Options is the set of opts map keys this loader understands:
// "driver_name", "dsn" (both required) and "test_id" (required).
type Options struct {
	DriverName string `mapstructure:"driver_name"`
	DSN        string `mapstructure:"dsn"`
	TestID     int64  `mapstructure:"test_id"`
}

// optionsFrom decodes the loosely-typed opts map Load receives into a typed
// Options value with mapstructure.
func optionsFrom(opts map[string]interface{}) (Options, error) {
	var o Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &o,
	})
	if err != nil {
		return o, errs.Wrap(errs.UnrecognizedFormat, err)
	}
	if err := decoder.Decode(opts); err != nil {
		return o, errs.Wrap(errs.UnrecognizedFormat, err)
	}
	if o.DriverName == "" {
		return o, errs.New(errs.UnrecognizedFormat, "sql-table loader requires a \"driver_name\" option")
	}
	if o.DSN == "" {
		return o, errs.New(errs.UnrecognizedFormat, "sql-table loader requires a \"dsn\" option")
	}
	if o.TestID == 0 {
		return o, errs.New(errs.UnrecognizedFormat, "sql-table loader requires a \"test_id\" option")
	}
	return o, nil
}

// sqlLoader implements loader.Loader directly rather than via AutoLoader,
// since its input is a database connection rather than a file path.
type sqlLoader struct{}

func (sqlLoader) Name() string   { return instrumentName }
func (sqlLoader) RawExt() string { return defaultConfig.Extension }

func (sqlLoader) Load(path string, opts map[string]interface{}) (*cell.Cell, error) {
	o, err := optionsFrom(opts)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var cols []string
	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	operation := func() error {
		db, err := sql.Open(o.DriverName, o.DSN)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r, err := db.QueryContext(ctx, normalTableQuery, o.TestID)
		if err != nil {
			return err
		}
		rows = r
		cols, err = r.Columns()
		return err
	}
	if err := backoff.Retry(operation, retry); err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithConfig(instrumentName)
	}
	defer rows.Close()

	var table cell.Table
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(errs.UnreadableFile, err).WithConfig(instrumentName)
		}
		row := make(cell.Row, len(cols))
		for i, c := range cols {
			name, ok := columnRename[c]
			if !ok {
				name = c
			}
			row[name] = values[i]
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithConfig(instrumentName)
	}

	if err := convertTableUnits(table); err != nil {
		return nil, err
	}

	fileID := cell.FileID{Name: path, FullName: path}
	c := cell.New(cell.Metadata{
		Instrument: instrumentName,
		FileID:     fileID,
		RawUnits:   cell.DefaultCellpyUnits,
		Limits:     cell.DefaultLimits,
	})
	c.Raw = table
	cellpylog.Default.Infof("sql-table loader: fetched %d rows for test_id %d", len(table), o.TestID)
	return c, nil
}

// convertTableUnits scales TestData_Normal_Table's native A/Ah columns to
// the canonical cellpy A/mAh scale, same as the text-file loaders' convert_units
// post-processor.
func convertTableUnits(table cell.Table) error {
	factor, err := quantity.Convert(1.0, defaultConfig.RawUnits["charge"], cell.DefaultCellpyUnits.Charge)
	if err != nil {
		return errs.Wrap(errs.UnitMismatch, err).WithConfig(instrumentName)
	}
	for _, row := range table {
		for _, col := range []string{"charge_capacity", "discharge_capacity"} {
			if v, ok := row[col].(float64); ok {
				row[col] = v * factor
			}
		}
	}
	return nil
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader { return sqlLoader{} })
}
