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

// Package classify implements the step-classification state machine
// (spec §4.2): it segments a Cell's raw table by (cycle_index, step_index,
// sub_step_index), computes per-segment statistics, and assigns each
// segment one of a closed set of step types.
package classify

import (
	"fmt"
	"math"

	"github.com/jepegit/cellpy-go/internal/cellpylog"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/headers"
	"golang.org/x/exp/constraints"
)

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// StepType is the closed set of values the classifier assigns to the
// steps table's `type` column.
type StepType string

const (
	Charge         StepType = "charge"
	Discharge      StepType = "discharge"
	CVCharge       StepType = "cv_charge"
	CVDischarge    StepType = "cv_discharge"
	TaperCharge    StepType = "taper_charge"
	TaperDischarge StepType = "taper_discharge"
	ChargeCV       StepType = "charge_cv"
	DischargeCV    StepType = "discharge_cv"
	OCVRlxUp       StepType = "ocvrlx_up"
	OCVRlxDown     StepType = "ocvrlx_down"
	IR             StepType = "ir"
	Rest           StepType = "rest"
	NotKnown       StepType = "not_known"
)

// StepTypes is the closed, ordered enumeration of every StepType the
// classifier can emit.
var StepTypes = []StepType{
	Charge, Discharge, CVCharge, CVDischarge, TaperCharge, TaperDischarge,
	ChargeCV, DischargeCV, OCVRlxUp, OCVRlxDown, IR, Rest, NotKnown,
}

// CycleMode determines the sign convention the polarity rule (classification
// rule 3) applies: positive current charges in a full-cell or anode-half
// cycle, but discharges in a cathode-half cycle.
type CycleMode string

const (
	FullCell    CycleMode = "full_cell"
	AnodeHalf   CycleMode = "anode_half"
	CathodeHalf CycleMode = "cathode_half"
)

// segment is one (cycle_index, step_index, sub_step_index) partition of
// the raw table, plus the per-column statistics computed over it.
type segment struct {
	cycle, step, subStep float64
	rows                 []int // indices into the raw table
	stats                map[string]stat
	values               map[string][]float64 // per-column raw values, for sub-range analysis
}

// stat holds the first/last/min/max/avr/std/delta summary spec §4.2
// requires for each tracked raw column.
type stat struct {
	first, last, min, max, avr, std, delta float64
}

var statColumns = headers.StatColumns

// statColumnRawName maps a step-table stat base name (headers.StatColumns)
// onto the raw-table column it is actually computed from; most already
// agree, but charge/discharge/point are named shorter on the step table
// than their raw-table source columns.
var statColumnRawName = map[string]string{
	"voltage":             headers.NormalHeaders.Voltage,
	"current":             headers.NormalHeaders.Current,
	"charge":              headers.NormalHeaders.ChargeCapacity,
	"discharge":           headers.NormalHeaders.DischargeCapacity,
	"internal_resistance": headers.NormalHeaders.InternalResistance,
	"point":               headers.NormalHeaders.DataPoint,
	"test_time":           headers.NormalHeaders.TestTime,
	"step_time":           headers.NormalHeaders.StepTime,
}

func computeStat(values []float64) stat {
	if len(values) == 0 {
		return stat{}
	}
	s := stat{first: values[0], last: values[len(values)-1], min: values[0], max: values[0]}
	var sum float64
	for _, v := range values {
		s.min = minOf(s.min, v)
		s.max = maxOf(s.max, v)
		sum += v
	}
	s.avr = sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - s.avr
		variance += d * d
	}
	s.std = math.Sqrt(variance / float64(len(values)))
	s.delta = s.last - s.first
	return s
}

func segmentColumnValues(raw cell.Table, rows []int, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, i := range rows {
		if v, ok := raw[i][column].(float64); ok {
			out = append(out, v)
		}
	}
	return out
}

func segmentRaw(raw cell.Table) []segment {
	h := headers.NormalHeaders
	var segs []segment
	var cur *segment
	for i, row := range raw {
		cy, _ := row[h.CycleIndex].(float64)
		st, _ := row[h.StepIndex].(float64)
		sub, _ := row[h.SubStepIndex].(float64)
		if cur == nil || cur.cycle != cy || cur.step != st || cur.subStep != sub {
			segs = append(segs, segment{cycle: cy, step: st, subStep: sub})
			cur = &segs[len(segs)-1]
		}
		cur.rows = append(cur.rows, i)
	}
	for i := range segs {
		segs[i].stats = map[string]stat{}
		segs[i].values = map[string][]float64{}
		for _, col := range statColumns {
			values := segmentColumnValues(raw, segs[i].rows, statColumnRawName[col])
			segs[i].stats[col] = computeStat(values)
			segs[i].values[col] = values
		}
	}
	return segs
}

// classifyOne applies the five ordered classification rules (spec §4.2) to
// one segment and returns its StepType and diagnostic info string.
func classifyOne(s segment, limits cell.Limits, mode CycleMode) (StepType, string) {
	current := s.stats["current"]
	voltage := s.stats["voltage"]

	// Rule 1: zero-current segment.
	if math.Abs(current.avr) < limits.CurrentHard {
		withinSoft := math.Abs(voltage.delta) < limits.StableVoltageSoft
		rising, falling := monotonicity(s.values["voltage"])
		if withinSoft && rising {
			return OCVRlxUp, "rule1: zero current, voltage rising monotonically within stable_voltage_soft"
		}
		if withinSoft && falling {
			return OCVRlxDown, "rule1: zero current, voltage falling monotonically within stable_voltage_soft"
		}
		if math.Abs(voltage.max-voltage.avr) < limits.StableVoltageHard && math.Abs(voltage.min-voltage.avr) < limits.StableVoltageHard {
			return Rest, "rule1: zero current, voltage within stable_voltage_hard of average"
		}
		return NotKnown, "rule1: zero current, voltage behavior unresolved"
	}

	// Rule 2: a transient of width below ir_change at the start of the segment.
	if isIRTransient(s, limits) {
		return IR, "rule2: leading transient narrower than ir_change"
	}

	// Rule 3: polarity convention.
	charging := current.avr > 0
	if mode == CathodeHalf {
		charging = !charging
	}
	var base StepType
	if charging {
		base = Charge
	} else {
		base = Discharge
	}

	// Rule 4: subclassify within charge/discharge.
	stableVoltage := voltage.std < limits.StableVoltageSoft
	stableCurrent := current.std < limits.StableCurrentSoft
	decaying := math.Abs(current.last) < math.Abs(current.first)
	monotoneVoltage := voltage.last != voltage.first || stableVoltage

	switch {
	case stableVoltage && decaying && !stableCurrent:
		if base == Charge {
			return CVCharge, "rule4: stable voltage with decaying current"
		}
		return CVDischarge, "rule4: stable voltage with decaying current"
	case stableCurrent && monotoneVoltage:
		return base, "rule4: stable current, monotone voltage"
	case stableCurrent && stableVoltage:
		// Mixed segment: a stable-current lead followed by a stable-voltage
		// tail, or the reverse.
		if currentLeadsVoltage(s, limits) {
			if base == Charge {
				return TaperCharge, "rule4: stable-current lead then stable-voltage tail (CC-then-CV)"
			}
			return TaperDischarge, "rule4: stable-current lead then stable-voltage tail (CC-then-CV)"
		}
		if base == Charge {
			return ChargeCV, "rule4: stable-voltage lead then stable-current tail"
		}
		return DischargeCV, "rule4: stable-voltage lead then stable-current tail"
	}

	// Rule 5: fallback.
	return NotKnown, "rule5: no classification rule matched"
}

// monotonicity reports whether values is non-decreasing (rising) or
// non-increasing (falling) across its full length; a segment whose voltage
// merely drifts with noise is neither.
func monotonicity(values []float64) (rising, falling bool) {
	if len(values) < 2 {
		return false, false
	}
	rising, falling = true, true
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			rising = false
		}
		if values[i] > values[i-1] {
			falling = false
		}
	}
	return rising, falling
}

// isIRTransient detects a short leading transient: the first sample's
// voltage deviates from the segment average by more than ir_change while
// the last sample's does not; the samples in between are not checked.
func isIRTransient(s segment, limits cell.Limits) bool {
	if len(s.rows) < 3 {
		return false
	}
	v := s.stats["voltage"]
	return math.Abs(v.first-v.avr) > limits.IRChange && math.Abs(v.last-v.avr) < limits.IRChange
}

// currentLeadsVoltage reports whether the current channel stabilizes
// before the voltage channel within the segment, i.e. a CC lead followed
// by a CV tail (taper_*) rather than the reverse (*_cv): it compares the
// standard deviations of current and voltage over the first half of the
// segment, each scaled by its stable_*_soft limit. A segment with fewer
// than four samples counts as current-led.
func currentLeadsVoltage(s segment, limits cell.Limits) bool {
	current := s.values["current"]
	voltage := s.values["voltage"]
	if len(current) < 4 || len(voltage) < 4 {
		return true
	}
	mid := len(current) / 2
	firstHalfCurrentStd := computeStat(current[:mid]).std
	firstHalfVoltageStd := computeStat(voltage[:mid]).std
	// If current is already tighter than voltage in the first half, the
	// constant-current phase came first.
	return firstHalfCurrentStd/limits.StableCurrentSoft <= firstHalfVoltageStd/limits.StableVoltageSoft
}

// Classify runs the step-classification state machine over c.Raw and
// populates c.Steps. c.Raw must already be post-processed (canonical
// headers, cellpy units).
func Classify(c *cell.Cell, mode CycleMode) error {
	if c.Empty() {
		return errs.New(errs.EmptyCell, "cannot classify an empty cell")
	}
	limits := c.Metadata.Limits
	sh := headers.StepTableHeaders
	nominal := c.Metadata.NominalCapacityOrDefault(cellpylog.Default)

	segs := segmentRaw(c.Raw)
	steps := make(cell.Table, 0, len(segs))
	for ustep, s := range segs {
		stepType, info := classifyOne(s, limits, mode)
		row := cell.Row{
			sh.Cycle:   s.cycle,
			sh.Step:    s.step,
			sh.UStep:   float64(ustep),
			sh.SubStep: s.subStep,
			sh.Type:    string(stepType),
			sh.SubType: "",
			sh.Info:    info,
		}
		for _, col := range statColumns {
			st := s.stats[col]
			row[headers.StatColumnName(col, "first")] = st.first
			row[headers.StatColumnName(col, "last")] = st.last
			row[headers.StatColumnName(col, "min")] = st.min
			row[headers.StatColumnName(col, "max")] = st.max
			row[headers.StatColumnName(col, "avr")] = st.avr
			row[headers.StatColumnName(col, "std")] = st.std
			row[headers.StatColumnName(col, "delta")] = st.delta
		}
		row[sh.RateAvr] = s.stats["current"].avr / nominal
		steps = append(steps, row)
	}
	c.Steps = steps
	return nil
}

// validate returns an error if t is not a member of the closed StepTypes
// set; classifyOne can never itself produce anything else. Neither the
// package nor its tests call it.
func validate(t StepType) error {
	for _, s := range StepTypes {
		if s == t {
			return nil
		}
	}
	return fmt.Errorf("classify: %q is not a member of StepTypes", t)
}
