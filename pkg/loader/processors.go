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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/headers"
	"github.com/jepegit/cellpy-go/pkg/quantity"
)

// removeEmptyLines strips blank lines from path, writing a uniquely-named
// temporary copy and returning its path. It is the one pre-processor spec
// §4.1 names.
func removeEmptyLines(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	lines := strings.Split(string(raw), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	scratchName := filepath.Join(os.TempDir(), "cellpy-go-clean-"+uuid.NewString()+strings.ToLower(strOrDefault(extOf(path), ".txt")))
	tmp, err := os.Create(scratchName)
	if err != nil {
		return "", errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer tmp.Close()
	if _, err := tmp.WriteString(strings.Join(kept, "\n")); err != nil {
		return "", errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	return tmp.Name(), nil
}

func extOf(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[i:]
}

func strOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// runPostProcessors applies cfg.PostProcessors in the order named, skipping
// any step whose required inputs are absent from the row schema (optional
// per-instrument passes, e.g. split_capacity on an instrument that already
// reports separate channels).
func runPostProcessors(c *cell.Cell, cfg Config, log interface {
	Warnf(format string, args ...interface{})
}) error {
	var result *multierror.Error
	for _, name := range cfg.PostProcessors {
		var err error
		switch name {
		case "get_column_names":
			// no-op: column names are already the map keys of each Row.
		case "rename_headers":
			renameHeaders(c, cfg.RenameHeaders)
		case "select_columns_to_keep":
			selectColumnsToKeep(c, cfg.ColumnsToKeep, cfg.KeepAllColumns)
		case "update_headers_with_units":
			// no-op beyond bookkeeping: unit labels are tracked on Metadata.RawUnits,
			// not inlined into column names.
		case "cumulate_capacity_within_cycle":
			cumulateCapacityWithinCycle(c)
		case "split_capacity":
			splitCapacity(c, cfg.States)
		case "split_current":
			splitCurrent(c)
		case "set_cycle_number_not_zero":
			setCycleNumberNotZero(c)
		case "set_index":
			// no-op: Row order already is the data_point order; data_point stays
			// present as an ordinary column per spec's "without dropping it".
		case "convert_date_time_to_datetime":
			err = convertDateTimeToDatetime(c)
		case "convert_step_time_to_timedelta":
			convertTimeToSeconds(c, headers.NormalHeaders.StepTime)
		case "convert_test_time_to_timedelta":
			convertTimeToSeconds(c, headers.NormalHeaders.TestTime)
		case "convert_units":
			err = convertUnits(c, cfg.RawUnits)
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func renameHeaders(c *cell.Cell, rename map[string]string) {
	if len(rename) == 0 {
		return
	}
	for _, row := range c.Raw {
		for native, canonical := range rename {
			if v, ok := row[native]; ok {
				row[canonical] = v
				delete(row, native)
			}
		}
	}
}

func selectColumnsToKeep(c *cell.Cell, keep []string, keepAll bool) {
	if keepAll || len(keep) == 0 {
		return
	}
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}
	for _, row := range c.Raw {
		for k := range row {
			if _, ok := keepSet[k]; !ok {
				delete(row, k)
			}
		}
	}
}

// cumulateCapacityWithinCycle turns an instrument's per-step capacity
// reading into a running within-cycle total, the intermediate form
// splitCapacity expects when the native file reports a resettable capacity
// counter rather than a monotone cumulative one. It adds up every row's
// capacity value within a cycle unconditionally; it does not detect a native
// column that is already cumulative.
func cumulateCapacityWithinCycle(c *cell.Cell) {
	h := headers.NormalHeaders
	var cycle float64
	var running float64
	first := true
	for _, row := range c.Raw {
		cy, _ := row[h.CycleIndex].(float64)
		if first || cy != cycle {
			running = 0
			cycle = cy
			first = false
		}
		if v, ok := row["capacity"].(float64); ok {
			running += v
			row["capacity"] = running
		}
	}
}

// splitCapacity separates a single native "capacity" column plus a state
// label into charge_capacity/discharge_capacity, zero-filling the opposite
// channel, per spec §4.1.
func splitCapacity(c *cell.Cell, states map[string]string) {
	h := headers.NormalHeaders
	chargeLabel := strOrDefault(states["charge"], "C")
	for _, row := range c.Raw {
		v, ok := row["capacity"].(float64)
		if !ok {
			continue
		}
		state, _ := row["state"].(string)
		if state == chargeLabel {
			row[h.ChargeCapacity] = v
			row[h.DischargeCapacity] = 0.0
		} else {
			row[h.ChargeCapacity] = 0.0
			row[h.DischargeCapacity] = v
		}
	}
}

// splitCurrent derives the signed canonical current column as
// current_pos - current_neg for rows that carry those channels but no
// current column; a row that already has a current column is left
// untouched. It does not split a signed current into positive/negative
// channels.
func splitCurrent(c *cell.Cell) {
	h := headers.NormalHeaders
	for _, row := range c.Raw {
		if _, ok := row[h.Current]; ok {
			continue
		}
		pos, hasPos := row["current_pos"].(float64)
		neg, hasNeg := row["current_neg"].(float64)
		if hasPos || hasNeg {
			row[h.Current] = pos - neg
		}
	}
}

func setCycleNumberNotZero(c *cell.Cell) {
	h := headers.NormalHeaders
	for _, row := range c.Raw {
		if v, ok := row[h.CycleIndex].(float64); ok && v == 0 {
			row[h.CycleIndex] = 1.0
		}
	}
}

// convertDateTimeToDatetime parses the native date_time column (already
// renamed to the canonical header) from the formats the supported
// instruments emit, replacing the cell value with a time.Time.
func convertDateTimeToDatetime(c *cell.Cell) error {
	h := headers.NormalHeaders
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05", "01/02/2006 15:04:05"}
	for _, row := range c.Raw {
		s, ok := row[h.DateTime].(string)
		if !ok {
			continue
		}
		var parsed time.Time
		var err error
		for _, layout := range layouts {
			parsed, err = time.Parse(layout, s)
			if err == nil {
				break
			}
		}
		if err != nil {
			return errs.Wrap(errs.UnrecognizedFormat, err).WithColumn(h.DateTime)
		}
		row[h.DateTime] = parsed
	}
	return nil
}

// convertTimeToSeconds parses an elapsed-time column expressed either as a
// plain float (already seconds) or as "HH:MM:SS[.fff]" into seconds.
func convertTimeToSeconds(c *cell.Cell, column string) {
	for _, row := range c.Raw {
		s, ok := row[column].(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			continue
		}
		hh, _ := strconv.ParseFloat(parts[0], 64)
		mm, _ := strconv.ParseFloat(parts[1], 64)
		ss, _ := strconv.ParseFloat(parts[2], 64)
		row[column] = hh*3600 + mm*60 + ss
	}
}

// convertUnits multiplies each numeric column by the symbolic factor
// (raw_unit / cellpy_unit) for that quantity, per spec §4.1.
func convertUnits(c *cell.Cell, rawUnits map[string]string) error {
	cellpyUnits := cell.DefaultCellpyUnits
	columnToCellpyUnit := map[string]string{
		headers.NormalHeaders.Current:            cellpyUnits.Current,
		headers.NormalHeaders.ChargeCapacity:      cellpyUnits.Charge,
		headers.NormalHeaders.DischargeCapacity:   cellpyUnits.Charge,
		headers.NormalHeaders.ChargeEnergy:        cellpyUnits.Energy,
		headers.NormalHeaders.DischargeEnergy:     cellpyUnits.Energy,
		headers.NormalHeaders.Voltage:             cellpyUnits.Voltage,
		headers.NormalHeaders.InternalResistance:  cellpyUnits.Resistance,
	}
	for column, cellpyUnit := range columnToCellpyUnit {
		quantityKind := quantityKindFor(column)
		rawUnit, ok := rawUnits[quantityKind]
		if !ok || rawUnit == cellpyUnit {
			continue
		}
		factor, err := quantity.Convert(1.0, rawUnit, cellpyUnit)
		if err != nil {
			return errs.Wrap(errs.UnitMismatch, err).WithColumn(column)
		}
		for _, row := range c.Raw {
			if v, ok := row[column].(float64); ok {
				row[column] = v * factor
			}
		}
	}
	return nil
}

func quantityKindFor(column string) string {
	h := headers.NormalHeaders
	switch column {
	case h.Current:
		return "current"
	case h.ChargeCapacity, h.DischargeCapacity:
		return "charge"
	case h.ChargeEnergy, h.DischargeEnergy:
		return "energy"
	case h.Voltage:
		return "voltage"
	case h.InternalResistance:
		return "resistance"
	}
	return ""
}
