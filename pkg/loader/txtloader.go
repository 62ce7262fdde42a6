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
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/jepegit/cellpy-go/internal/cellpylog"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// candidateDelimiters is the fixed set of separators the auto-detector
// scans for, in the order the reference instrument scans them.
var candidateDelimiters = []string{";", "\t", "|", ","}

// scanDelimiterWindow is the number of leading lines sampled when
// auto-detecting the delimiter and header row.
const scanDelimiterWindow = 20

// detectDelimiterAndHeaderRow scans the first scanDelimiterWindow lines of
// path and picks the candidate delimiter whose per-line field count is
// uniform over the bulk of those lines; the header row is the first line
// whose field count under that delimiter matches the most common count.
func detectDelimiterAndHeaderRow(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer f.Close()

	lines := make([]string, 0, scanDelimiterWindow)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(lines) < scanDelimiterWindow {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return "", 0, errs.New(errs.UnrecognizedFormat, "file has no lines to scan for delimiter").WithPath(path)
	}

	bestDelim := ""
	bestScore := -1
	bestHeaderRow := 0
	for _, d := range candidateDelimiters {
		counts := make([]int, len(lines))
		for i, l := range lines {
			counts[i] = strings.Count(l, d) + 1
		}
		mode, modeCount := modeOf(counts)
		if mode <= 1 {
			continue // a delimiter that never splits a line tells us nothing
		}
		if modeCount > bestScore {
			bestScore = modeCount
			bestDelim = d
			for i, c := range counts {
				if c == mode {
					bestHeaderRow = i
					break
				}
			}
		}
	}
	if bestDelim == "" {
		return "", 0, errs.New(errs.UnrecognizedFormat, "could not auto-detect a delimiter").WithPath(path)
	}
	return bestDelim, bestHeaderRow, nil
}

func modeOf(counts []int) (value, occurrences int) {
	freq := map[int]int{}
	for _, c := range counts {
		freq[c]++
	}
	for v, n := range freq {
		if n > occurrences {
			value, occurrences = v, n
		}
	}
	return value, occurrences
}

// readDelimitedTable reads path as a delimited text table: skipRows lines
// are discarded, the next line is the header row, and every subsequent
// non-empty line becomes a Row keyed by those header names with values
// coerced to float64 where possible (non-coercible cells are left as
// strings, later converted by date/time post-processors or left alone).
func readDelimitedTable(path, delimiter string, skipRows int, encoding string) (cell.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer f.Close()

	var scanner *bufio.Scanner
	if encoding == "iso-8859-1" {
		reader := transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
		scanner = bufio.NewScanner(reader)
	} else {
		scanner = bufio.NewScanner(f)
	}

	lineNo := 0
	var columns []string
	var table cell.Table
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if lineNo <= skipRows {
			continue
		}
		if columns == nil {
			columns = strings.Split(line, delimiter)
			for i, c := range columns {
				columns[i] = strings.TrimSpace(c)
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		row := make(cell.Row, len(columns))
		for i, col := range columns {
			if i >= len(fields) {
				break
			}
			val := strings.TrimSpace(fields[i])
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				row[col] = f
			} else {
				row[col] = val
			}
		}
		table = append(table, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	return table, nil
}

// AutoLoader is the template every instrument loader built atop a
// format-specific queryFile function follows: run pre-processors, call
// queryFile to obtain a raw Table, then run the configured post-processor
// pipeline. It implements Loader when embedded by a concrete instrument
// with queryFile set.
type AutoLoader struct {
	name      string
	cfg       Config
	queryFile func(path string, cfg Config) (cell.Table, error)
}

// NewAutoLoader returns an AutoLoader registered under name, driven by cfg
// and queryFile. A cfg built as a Go literal rather than through
// ParseConfig carries no PostProcessors of its own; it gets the same
// DefaultPostProcessors fallback ParseConfig applies, so every instrument
// loader runs the full pipeline regardless of how its Config was built.
func NewAutoLoader(name string, cfg Config, queryFile func(path string, cfg Config) (cell.Table, error)) *AutoLoader {
	if len(cfg.PostProcessors) == 0 {
		cfg.PostProcessors = DefaultPostProcessors
	}
	return &AutoLoader{name: name, cfg: cfg, queryFile: queryFile}
}

func (l *AutoLoader) Name() string    { return l.name }
func (l *AutoLoader) RawExt() string  { return l.cfg.Extension }

// Load implements Loader. The scratch file a remove_empty_lines
// pre-processor pass produces is always cleaned up on return; a cleanup
// failure is joined onto whatever error Load was already going to return
// (or becomes the only error, on an otherwise-successful load) rather than
// silently discarded.
func (l *AutoLoader) Load(path string, opts map[string]interface{}) (result *cell.Cell, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, errs.Wrap(errs.FileNotFound, statErr).WithPath(path)
	}

	workingPath := path
	for _, name := range l.cfg.PreProcessors {
		if name == "remove_empty_lines" {
			cleaned, cleanErr := removeEmptyLines(workingPath)
			if cleanErr != nil {
				return nil, cleanErr
			}
			workingPath = cleaned
			defer func() {
				err = multierr.Append(err, os.Remove(cleaned))
			}()
		}
	}

	table, err := l.queryFile(workingPath, l.cfg)
	if err != nil {
		return nil, err
	}

	fileID, err := cell.NewFileID(path)
	if err != nil {
		return nil, err
	}
	rawUnits := rawUnitsFromConfig(l.cfg)
	c := cell.New(cell.Metadata{
		Instrument: l.cfg.Instrument,
		FileID:     fileID,
		RawUnits:   rawUnits,
		Limits:     limitsFromConfig(l.cfg),
	})
	c.Raw = table

	if err := runPostProcessors(c, l.cfg, cellpylog.Default); err != nil {
		return nil, err
	}
	if err := c.RequireColumns(requiredColumns()); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadDelimitedTable exposes the delimited-text reader to instrument
// packages that obtain an intermediate CSV/TSV from a non-text source
// (e.g. a subprocess extraction step) and need it parsed into a raw Table
// without running a second, nested loader pipeline over it.
func ReadDelimitedTable(path, delimiter string, skipRows int, encoding string) (cell.Table, error) {
	return readDelimitedTable(path, delimiter, skipRows, encoding)
}

// TxtLoader is an AutoLoader specialised to delimited text: if
// Formatters.Delimiter is unset it auto-detects the delimiter and header
// row by scanning the file, per spec §4.1.
func NewTxtLoader(name string, cfg Config) *AutoLoader {
	return NewAutoLoader(name, cfg, queryTxtFile)
}

func queryTxtFile(path string, cfg Config) (cell.Table, error) {
	delimiter := cfg.Formatters.Delimiter
	skipRows := cfg.Formatters.SkipRows
	if delimiter == "" {
		detected, headerRow, err := detectDelimiterAndHeaderRow(path)
		if err != nil {
			return nil, err
		}
		delimiter = detected
		skipRows = headerRow
	}
	return readDelimitedTable(path, delimiter, skipRows, cfg.Formatters.Encoding)
}

// NewCustomLoader reads a Config descriptor from a yaml file and returns a
// TxtLoader-shaped AutoLoader defaulting KeepAllColumns to true, per spec
// §4.1's CustomLoader contract.
func NewCustomLoader(yamlPath string) (*AutoLoader, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(yamlPath)
	}
	cfg, err := ParseConfig(raw, "custom")
	if err != nil {
		return nil, errs.Wrap(errs.UnrecognizedFormat, err).WithPath(yamlPath)
	}
	if len(cfg.ColumnsToKeep) == 0 {
		cfg.KeepAllColumns = true
	}
	return NewTxtLoader("custom", cfg), nil
}

func rawUnitsFromConfig(cfg Config) cell.Units {
	u := cell.Units{}
	get := func(k, def string) string {
		if v, ok := cfg.RawUnits[k]; ok {
			return v
		}
		return def
	}
	u.Current = get("current", "A")
	u.Charge = get("charge", "Ah")
	u.Voltage = get("voltage", "V")
	u.Time = get("time", "sec")
	u.Resistance = get("resistance", "ohm")
	u.Power = get("power", "W")
	u.Energy = get("energy", "Wh")
	u.Mass = get("mass", "g")
	return u
}

func limitsFromConfig(cfg Config) cell.Limits {
	l := cell.DefaultLimits
	get := func(k string, def float64) float64 {
		if v, ok := cfg.RawLimits[k]; ok {
			return v
		}
		return def
	}
	l.CurrentHard = get("current_hard", l.CurrentHard)
	l.CurrentSoft = get("current_soft", l.CurrentSoft)
	l.StableCurrentHard = get("stable_current_hard", l.StableCurrentHard)
	l.StableCurrentSoft = get("stable_current_soft", l.StableCurrentSoft)
	l.StableVoltageHard = get("stable_voltage_hard", l.StableVoltageHard)
	l.StableVoltageSoft = get("stable_voltage_soft", l.StableVoltageSoft)
	l.IRChange = get("ir_change", l.IRChange)
	return l
}

func requiredColumns() []string {
	return []string{"data_point", "test_time", "cycle_index", "step_index", "current", "voltage", "charge_capacity", "discharge_capacity"}
}
