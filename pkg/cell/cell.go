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

// Package cell defines the in-memory container a loader populates, a
// classifier fills in with steps, and a summarizer reduces to per-cycle
// rows. A Cell owns exactly three tables and the metadata describing the
// instrument run that produced them.
package cell

import (
	"os"
	"time"

	"github.com/jepegit/cellpy-go/internal/errs"
)

// FileID mirrors the provenance record a loader stamps onto a Cell: enough
// filesystem metadata to decide whether a previously-loaded cellpy archive
// is stale with respect to the raw file it was built from.
type FileID struct {
	Name         string
	FullName     string
	Size         int64
	LastModified time.Time
}

// NewFileID stats path and returns its FileID, or errs.UnreadableFile.
func NewFileID(path string) (FileID, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileID{}, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	return FileID{
		Name:         fi.Name(),
		FullName:     path,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}, nil
}

// IsStale reports whether the file FileID was recorded for has since been
// modified or resized, i.e. a cached cellpy archive built from it should be
// reloaded from the raw source rather than trusted as-is.
func (f FileID) IsStale(current FileID) bool {
	return f.Size != current.Size || !f.LastModified.Equal(current.LastModified)
}

// Units is the set of string-valued unit labels attached to every numeric
// quantity a Cell carries, either as declared by a loader (raw_units) or as
// the process-wide canonical scale (cellpy_units).
type Units struct {
	Current             string
	Charge               string
	Voltage              string
	Time                 string
	Resistance           string
	Power                string
	Energy               string
	Frequency            string
	Mass                 string
	NominalCapacity      string
	SpecificGravimetric  string
	SpecificAreal        string
	SpecificVolumetric   string
	Length               string
	Area                 string
	Volume               string
	Temperature          string
	Pressure             string
}

// DefaultCellpyUnits is the process-wide canonical unit scale every Cell's
// raw table is converted into during loading.
var DefaultCellpyUnits = Units{
	Current:             "A",
	Charge:               "mAh",
	Voltage:              "V",
	Time:                 "sec",
	Resistance:           "ohm",
	Power:                "W",
	Energy:               "Wh",
	Frequency:            "hz",
	Mass:                 "mg",
	NominalCapacity:      "mAh/g",
	SpecificGravimetric:  "g",
	SpecificAreal:        "cm**2",
	SpecificVolumetric:   "cm**3",
	Length:               "cm",
	Area:                 "cm**2",
	Volume:               "cm**3",
	Temperature:          "C",
	Pressure:             "bar",
}

// Limits holds the resolution epsilons the step classifier (§4.2) uses to
// decide segment boundaries and step types.
type Limits struct {
	CurrentHard       float64
	CurrentSoft       float64
	StableCurrentHard float64
	StableCurrentSoft float64
	StableVoltageHard float64
	StableVoltageSoft float64
	StableChargeHard  float64
	StableChargeSoft  float64
	IRChange          float64
}

// DefaultLimits mirrors the reference instrument's default resolution.
var DefaultLimits = Limits{
	CurrentHard:       1e-13,
	CurrentSoft:       1e-05,
	StableCurrentHard: 2.0,
	StableCurrentSoft: 4.0,
	StableVoltageHard: 2.0,
	StableVoltageSoft: 4.0,
	StableChargeHard:  0.9,
	StableChargeSoft:  5.0,
	IRChange:          1e-05,
}

// Row is one row of any of the three core tables: a column-name-keyed bag
// of values. Cells that parse as numbers are float64; the delimited-text
// reader keeps any other cell as its string, and no pass turns such cells
// into NaN.
type Row map[string]interface{}

// Table is an ordered list of Rows sharing a logical schema. Row order is
// significant: it is the row's natural data_point/cycle/step order.
type Table []Row

// Column extracts a single column as a float64 slice. An entry that is
// absent or is not a float64 reads as 0; callers needing strict presence
// should check Row key existence directly.
func (t Table) Column(name string) []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		v, ok := row[name]
		if !ok {
			out[i] = 0
			continue
		}
		if f, ok := v.(float64); ok {
			out[i] = f
		}
	}
	return out
}

// Metadata holds the per-Cell, non-tabular information a loader records:
// instrument identity, the file it was built from, and experiment
// parameters a caller may later override (mass, nominal capacity, ...).
type Metadata struct {
	Instrument      string
	FileID          FileID
	Mass            float64 // in MassUnit
	MassUnit        string
	NominalCapacity float64 // in NominalCapacityUnit, 0 means "not set"
	ActiveArea      float64
	ActiveVolume    float64
	RawUnits        Units
	Limits          Limits
}

// NominalCapacityOrDefault returns the configured nominal capacity, falling
// back to 1.0 when unset and logging the fallback through log at WARNING
// (supplemented behavior; see the decision recorded in the design ledger).
func (m Metadata) NominalCapacityOrDefault(log interface {
	Warnf(format string, args ...interface{})
}) float64 {
	if m.NominalCapacity > 0 {
		return m.NominalCapacity
	}
	if log != nil {
		log.Warnf("nominal_capacity not set for instrument %q (file %q); falling back to 1.0", m.Instrument, m.FileID.FullName)
	}
	return 1.0
}

// Cell is the full container: one raw time-series table, one per-step
// summary table, one per-cycle summary table, plus Metadata. Invariants
// I1-I7 (spec §3.2) are the caller's responsibility to preserve across
// pipeline stages; Cell itself only enforces the ones cheap to check at
// construction/mutation time.
type Cell struct {
	Raw      Table
	Steps    Table
	Summary  Table
	Metadata Metadata
}

// New returns an empty Cell carrying only metadata, as a loader returns
// before the classifier and summarizer have run.
func New(meta Metadata) *Cell {
	return &Cell{Metadata: meta}
}

// Empty reports whether the Cell has no raw rows (spec's EMPTY_CELL
// failure mode: a loader that successfully parsed a file containing zero
// data rows).
func (c *Cell) Empty() bool {
	return len(c.Raw) == 0
}

// RequireColumns returns errs.MissingRequiredColumn, naming the first
// absent one, unless every name in required is present in the raw table's
// first row's key set. An empty raw table with a non-empty required set is
// itself an error via errs.EmptyCell.
func (c *Cell) RequireColumns(required []string) error {
	if c.Empty() {
		if len(required) == 0 {
			return nil
		}
		return errs.New(errs.EmptyCell, "cell has no raw rows")
	}
	first := c.Raw[0]
	for _, name := range required {
		if _, ok := first[name]; !ok {
			return errs.New(errs.MissingRequiredColumn, "required column missing after post-processing").WithColumn(name)
		}
	}
	return nil
}
