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

// Package summary implements the per-cycle summarizer (spec §4.3): it
// picks one representative row per cycle from a classified Cell and
// derives the coulombic, capacity-total, shifted-balance, RIC, voltage, IR
// and rate columns from it, plus their specific (_gravimetric/_areal/
// _absolute) variants.
package summary

import (
	"math"
	"sort"

	"github.com/jepegit/cellpy-go/internal/cellpylog"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/classify"
	"github.com/jepegit/cellpy-go/pkg/headers"
	"github.com/jepegit/cellpy-go/pkg/quantity"
	"github.com/jepegit/cellpy-go/pkg/selector"
)

// Options configures which optional derived columns the summarizer
// produces and how normalization is performed.
type Options struct {
	Mode            classify.CycleMode // anode_half swaps first/second for I6's coulombic formulas; zero value behaves as full_cell/cathode_half
	FindEndVoltage  bool
	FindIR          bool
	ReferenceCycles []float64 // if set, normalized_cycle_index uses the mean first-capacity over these cycles instead of nominal_capacity
	Exclude         selector.Selector
}

// firstSecond resolves which capacity channel is "first" and which is
// "second" for I6's mode-dependent formulas (§4.3): anode-half cycles
// discharge then charge; full-cell and cathode-half cycles charge then
// discharge.
func firstSecond(mode classify.CycleMode, chargeCap, dischargeCap float64) (first, second float64) {
	if mode == classify.AnodeHalf {
		return dischargeCap, chargeCap
	}
	return chargeCap, dischargeCap
}

// representative is one cycle's selected raw row plus the joined step
// statistics the summarizer needs (first charge/discharge step rate and
// IR, last discharge/charge step end voltage).
type representative struct {
	cycle               float64
	raw                 cell.Row
	firstChargeRateAvr  float64
	firstDischargeRateAvr float64
	firstChargeIR       float64
	firstDischargeIR    float64
	hasIR               bool
	lastDischargeVoltage float64
	hasDischargeVoltage  bool
	lastChargeVoltage    float64
	hasChargeVoltage     bool
	excludedChargeAdj    float64
	excludedDischargeAdj float64
}

// Summarize populates c.Summary from c.Raw and c.Steps. c.Steps must
// already have been produced by classify.Classify.
func Summarize(c *cell.Cell, opts Options) error {
	h := headers.NormalHeaders
	if err := c.RequireColumns([]string{h.CycleIndex, h.DataPoint, h.ChargeCapacity, h.DischargeCapacity}); err != nil {
		return err
	}

	reps, err := selectRepresentatives(c, opts)
	if err != nil {
		return err
	}
	if len(reps) == 0 {
		c.Summary = nil
		return nil
	}

	nominal := c.Metadata.NominalCapacityOrDefault(cellpylog.Default)
	if len(opts.ReferenceCycles) > 0 {
		nominal = meanFirstCapacity(reps, opts.ReferenceCycles, opts.Mode)
	}

	sh := headers.SummaryHeaders
	summary := make(cell.Table, len(reps))

	var prevDischarge, prevCharge *representative
	var cumCE, cumCD, cumChargeCap, cumDischargeCap float64
	var cumDischargeLoss, cumChargeLoss float64
	var cumRIC, cumRICSEI, cumRICDisconnect float64
	var shiftedCharge float64

	for i, r := range reps {
		row := cell.Row{}
		chargeCap, _ := r.raw[h.ChargeCapacity].(float64)
		dischargeCap, _ := r.raw[h.DischargeCapacity].(float64)
		chargeCap -= r.excludedChargeAdj
		dischargeCap -= r.excludedDischargeAdj

		row[sh.CycleIndex] = r.cycle
		row[sh.DataPoint] = r.raw[h.DataPoint]
		row[sh.TestTime] = r.raw[h.TestTime]
		row[sh.DateTime] = r.raw[h.DateTime]
		row[sh.ChargeCapacity] = chargeCap
		row[sh.DischargeCapacity] = dischargeCap

		first, second := firstSecond(opts.Mode, chargeCap, dischargeCap)

		ce := 100 * second / first // I6: coulombic_efficiency = 100 * second/first
		cumCE += ce
		row[sh.CoulombicEfficiency] = ce
		row[sh.CumulatedCoulombicEfficiency] = cumCE

		coulombicDiff := first - second
		cumCD += coulombicDiff
		row[sh.CoulombicDifference] = coulombicDiff
		row[sh.CumulatedCoulombicDifference] = cumCD

		cumChargeCap += chargeCap
		cumDischargeCap += dischargeCap
		row[sh.CumulatedChargeCapacity] = cumChargeCap
		row[sh.CumulatedDischargeCapacity] = cumDischargeCap

		if i == 0 {
			row[sh.ChargeCapacityLoss] = math.NaN()
			row[sh.DischargeCapacityLoss] = math.NaN()
			row[sh.CumulatedChargeCapacityLoss] = math.NaN()
			row[sh.CumulatedDischargeCapacityLoss] = math.NaN()
			row[sh.ShiftedChargeCapacity] = math.NaN()
			row[sh.ShiftedDischargeCapacity] = math.NaN()
			row[sh.CumulatedRIC] = math.NaN()
			row[sh.CumulatedRICSEI] = math.NaN()
			row[sh.CumulatedRICDisconnect] = math.NaN()
		} else {
			prevChargeCap, _ := prevCharge.raw[h.ChargeCapacity].(float64)
			prevDischargeCap, _ := prevDischarge.raw[h.DischargeCapacity].(float64)
			prevChargeCap -= prevCharge.excludedChargeAdj
			prevDischargeCap -= prevDischarge.excludedDischargeAdj

			chargeLoss := prevChargeCap - chargeCap
			dischargeLoss := prevDischargeCap - dischargeCap
			cumChargeLoss += chargeLoss
			cumDischargeLoss += dischargeLoss
			row[sh.ChargeCapacityLoss] = chargeLoss
			row[sh.DischargeCapacityLoss] = dischargeLoss
			row[sh.CumulatedChargeCapacityLoss] = cumChargeLoss
			row[sh.CumulatedDischargeCapacityLoss] = cumDischargeLoss

			prevFirst, prevSecond := firstSecond(opts.Mode, prevChargeCap, prevDischargeCap)
			cumRIC += (prevFirst - second) / prevSecond
			cumRICSEI += (first - prevSecond) / prevSecond
			cumRICDisconnect += (prevSecond - second) / prevSecond
			row[sh.CumulatedRIC] = cumRIC
			row[sh.CumulatedRICSEI] = cumRICSEI
			row[sh.CumulatedRICDisconnect] = cumRICDisconnect
		}

		shiftedCharge += first - second
		row[sh.ShiftedChargeCapacity] = shiftedCharge
		row[sh.ShiftedDischargeCapacity] = shiftedCharge + first

		if opts.FindEndVoltage {
			if r.hasDischargeVoltage {
				row[sh.EndVoltageDischarge] = r.lastDischargeVoltage
			} else {
				row[sh.EndVoltageDischarge] = 0.0
			}
			if r.hasChargeVoltage {
				row[sh.EndVoltageCharge] = r.lastChargeVoltage
			} else {
				row[sh.EndVoltageCharge] = 0.0
			}
		}

		if opts.FindIR && r.hasIR {
			row[sh.IRDischarge] = r.firstDischargeIR
			row[sh.IRCharge] = r.firstChargeIR
		}

		row[sh.ChargeCRate] = r.firstChargeRateAvr
		row[sh.DischargeCRate] = r.firstDischargeRateAvr

		row[sh.NormalizedCycleIndex] = cumChargeCap / nominal

		applySpecificVariants(row, sh, c.Metadata)

		summary[i] = row
		prevCharge = &reps[i]
		prevDischarge = &reps[i]
	}

	c.Summary = summary
	return nil
}

func meanFirstCapacity(reps []representative, referenceCycles []float64, mode classify.CycleMode) float64 {
	set := make(map[float64]struct{}, len(referenceCycles))
	for _, c := range referenceCycles {
		set[c] = struct{}{}
	}
	var sum float64
	var n int
	for _, r := range reps {
		if _, ok := set[r.cycle]; ok {
			chargeCap, _ := r.raw["charge_capacity"].(float64)
			dischargeCap, _ := r.raw["discharge_capacity"].(float64)
			first, _ := firstSecond(mode, chargeCap-r.excludedChargeAdj, dischargeCap-r.excludedDischargeAdj)
			sum += first
			n++
		}
	}
	if n == 0 {
		return 1.0
	}
	return sum / float64(n)
}

// applySpecificVariants multiplies every base column named in
// Summary.SpecificColumns by the per-mode conversion factor (§4.5),
// writing the _gravimetric/_areal/_absolute suffixed columns.
func applySpecificVariants(row cell.Row, sh headers.Summary, meta cell.Metadata) {
	modes := []struct {
		postfix string
		mode    quantity.SpecificMode
		value   float64
		unit    string
	}{
		{headers.PostfixGravimetric, quantity.Gravimetric, meta.Mass, meta.MassUnit},
		{headers.PostfixAreal, quantity.Areal, meta.ActiveArea, cell.DefaultCellpyUnits.Area},
		{headers.PostfixAbsolute, quantity.Absolute, 0, ""},
	}
	for _, base := range sh.SpecificColumns() {
		v, ok := row[base].(float64)
		if !ok {
			continue
		}
		for _, m := range modes {
			factor, err := quantity.SpecificFactor(m.mode, meta.RawUnits.Charge, cell.DefaultCellpyUnits.Charge, specificUnitFor(m.mode), m.value, m.unit)
			if err != nil {
				continue // leave the specific column absent rather than raise; base columns remain valid
			}
			row[headers.SpecificColumnName(base, m.postfix)] = v * factor
		}
	}
}

func specificUnitFor(mode quantity.SpecificMode) string {
	switch mode {
	case quantity.Gravimetric:
		return cell.DefaultCellpyUnits.SpecificGravimetric
	case quantity.Areal:
		return cell.DefaultCellpyUnits.SpecificAreal
	case quantity.Volumetric:
		return cell.DefaultCellpyUnits.SpecificVolumetric
	}
	return ""
}

// selectRepresentatives picks, for each cycle, the raw row whose
// data_point equals point_last of that cycle's last step, joining the
// step-table statistics the summary needs.
func selectRepresentatives(c *cell.Cell, opts Options) ([]representative, error) {
	h := headers.NormalHeaders
	sh := headers.StepTableHeaders

	dataPointIndex := make(map[float64]int, len(c.Raw))
	for i, row := range c.Raw {
		if dp, ok := row[h.DataPoint].(float64); ok {
			dataPointIndex[dp] = i
		}
	}

	type cycleSteps struct {
		lastStep                   cell.Row
		firstCharge, firstDischarge cell.Row
		lastDischargeVoltage, lastChargeVoltage float64
		hasDischargeVoltage, hasChargeVoltage bool
	}
	byCycle := map[float64]*cycleSteps{}
	var cycles []float64
	for _, step := range c.Steps {
		cy, _ := step[sh.Cycle].(float64)
		cs, ok := byCycle[cy]
		if !ok {
			cs = &cycleSteps{}
			byCycle[cy] = cs
			cycles = append(cycles, cy)
		}
		cs.lastStep = step // steps are in natural order, so the last write wins
		stepType, _ := step[sh.Type].(string)
		switch stepType {
		case "charge":
			if cs.firstCharge == nil {
				cs.firstCharge = step
			}
			cs.lastChargeVoltage, _ = step[headers.StatColumnName("voltage", "last")].(float64)
			cs.hasChargeVoltage = true
		case "discharge":
			if cs.firstDischarge == nil {
				cs.firstDischarge = step
			}
			cs.lastDischargeVoltage, _ = step[headers.StatColumnName("voltage", "last")].(float64)
			cs.hasDischargeVoltage = true
		}
	}
	sort.Float64s(cycles)

	reps := make([]representative, 0, len(cycles))
	for _, cy := range cycles {
		cs := byCycle[cy]
		pointLast, _ := cs.lastStep[headers.StatColumnName("point", "last")].(float64)
		idx, ok := dataPointIndex[pointLast]
		if !ok {
			return nil, errs.New(errs.MissingRequiredColumn, "no raw row found for cycle's representative data_point").WithColumn(h.DataPoint)
		}
		r := representative{cycle: cy, raw: c.Raw[idx]}
		if cs.firstCharge != nil {
			r.firstChargeRateAvr, _ = cs.firstCharge[sh.RateAvr].(float64)
			r.firstChargeIR, _ = cs.firstCharge[headers.StatColumnName("internal_resistance", "first")].(float64)
			r.hasIR = true
		}
		if cs.firstDischarge != nil {
			r.firstDischargeRateAvr, _ = cs.firstDischarge[sh.RateAvr].(float64)
			r.firstDischargeIR, _ = cs.firstDischarge[headers.StatColumnName("internal_resistance", "first")].(float64)
			r.hasIR = true
		}
		r.lastDischargeVoltage = cs.lastDischargeVoltage
		r.hasDischargeVoltage = cs.hasDischargeVoltage
		r.lastChargeVoltage = cs.lastChargeVoltage
		r.hasChargeVoltage = cs.hasChargeVoltage

		if opts.Exclude != nil {
			stepRows := make([]map[string]interface{}, len(c.Steps))
			for i, s := range c.Steps {
				stepRows[i] = s
			}
			r.excludedChargeAdj, r.excludedDischargeAdj = selector.ExcludedDelta(stepRows, cy, opts.Exclude)
		}
		reps = append(reps, r)
	}
	return reps, nil
}
