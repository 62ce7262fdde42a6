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

// Package quantity implements the small symbolic unit system every numeric
// column in the core carries: every value has an implicit unit string (e.g.
// "A", "mAh", "V", "sec", "cm**2", "mAh/g"), and conversion factors between
// compatible units are computed symbolically; incompatible conversions fail
// explicitly with errs.UnitMismatch.
//
// Seven base dimensions are tracked: current, time, voltage, mass, length,
// temperature and pressure. Charge, area, volume, energy, power, resistance
// and frequency are not independent bases — they are derived combinations of
// these seven (an ampere-hour really is current multiplied by time), which is
// what lets e.g. a charge-per-mass ("mAh/g") reduce against a bare mass unit.
package quantity

import (
	"fmt"
	"strings"

	"github.com/jepegit/cellpy-go/internal/errs"
)

// dims is a dimension vector over the seven base quantities. A zero value
// for a key is equivalent to the key being absent.
type dims map[string]int

const (
	dimCurrent     = "current"
	dimTime        = "time"
	dimVoltage     = "voltage"
	dimMass        = "mass"
	dimLength      = "length"
	dimTemperature = "temperature"
	dimPressure    = "pressure"
)

func (d dims) add(o dims) dims {
	out := dims{}
	for k, v := range d {
		out[k] += v
	}
	for k, v := range o {
		out[k] += v
	}
	return out.clean()
}

func (d dims) sub(o dims) dims {
	out := dims{}
	for k, v := range d {
		out[k] += v
	}
	for k, v := range o {
		out[k] -= v
	}
	return out.clean()
}

func (d dims) clean() dims {
	out := dims{}
	for k, v := range d {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func (d dims) isDimensionless() bool {
	return len(d.clean()) == 0
}

// atomicUnit describes one named unit symbol: its dimension vector and the
// factor that converts 1 of this symbol into the canonical base-product
// scale for that dimension vector (A for current, sec for time, V for
// voltage, g for mass, cm for length, C for temperature, bar for pressure).
type atomicUnit struct {
	dims   dims
	factor float64
}

var atomicUnits = map[string]atomicUnit{
	// current
	"A":  {dims{dimCurrent: 1}, 1},
	"mA": {dims{dimCurrent: 1}, 1e-3},
	"uA": {dims{dimCurrent: 1}, 1e-6},
	"kA": {dims{dimCurrent: 1}, 1e3},

	// time
	"sec": {dims{dimTime: 1}, 1},
	"s":   {dims{dimTime: 1}, 1},
	"min": {dims{dimTime: 1}, 60},
	"hr":  {dims{dimTime: 1}, 3600},
	"h":   {dims{dimTime: 1}, 3600},

	// voltage
	"V":  {dims{dimVoltage: 1}, 1},
	"mV": {dims{dimVoltage: 1}, 1e-3},
	"kV": {dims{dimVoltage: 1}, 1e3},

	// charge: derived as current*time, but spelled out atomically since "Ah"
	// does not parse as a compound via the "**"/"/" grammar below.
	"Ah":  {dims{dimCurrent: 1, dimTime: 1}, 3600},
	"mAh": {dims{dimCurrent: 1, dimTime: 1}, 3.6},
	"uAh": {dims{dimCurrent: 1, dimTime: 1}, 3.6e-3},
	"As":  {dims{dimCurrent: 1, dimTime: 1}, 1},

	// mass
	"g":  {dims{dimMass: 1}, 1},
	"mg": {dims{dimMass: 1}, 1e-3},
	"ug": {dims{dimMass: 1}, 1e-6},
	"kg": {dims{dimMass: 1}, 1e3},

	// length
	"cm": {dims{dimLength: 1}, 1},
	"m":  {dims{dimLength: 1}, 100},
	"mm": {dims{dimLength: 1}, 0.1},
	"um": {dims{dimLength: 1}, 1e-4},

	// resistance, power, energy, frequency: derived combinations spelled as
	// atoms because they do not follow the "**"/"/" grammar either.
	"ohm": {dims{dimVoltage: 1, dimCurrent: -1}, 1},
	"W":   {dims{dimVoltage: 1, dimCurrent: 1}, 1},
	"Wh":  {dims{dimVoltage: 1, dimCurrent: 1, dimTime: 1}, 3600},
	"hz":  {dims{dimTime: -1}, 1},
	"Hz":  {dims{dimTime: -1}, 1},

	// temperature, pressure
	"C":   {dims{dimTemperature: 1}, 1},
	"K":   {dims{dimTemperature: 1}, 1},
	"bar": {dims{dimPressure: 1}, 1},
	"Pa":  {dims{dimPressure: 1}, 1e-5},
}

// Quantity is a value carrying a resolved dimension vector and a magnitude
// expressed in the canonical base-product scale (so that two Quantities of
// equal dims can be directly compared/divided to a pure number).
type Quantity struct {
	dims dims
	mag  float64
}

// Parse resolves a unit string such as "A", "cm**2", "mAh/g" into its
// dimension vector and base-scale factor. Supported grammar: an atomic
// symbol, optionally suffixed with "**N" (integer power, used for area/
// volume like "cm**2"/"cm**3"), optionally followed by "/" and another such
// term (used for specific units like "mAh/g").
func Parse(unit string) (dims, float64, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return dims{}, 1, nil
	}
	parts := strings.SplitN(unit, "/", 2)
	numDims, numFactor, err := parseTerm(parts[0])
	if err != nil {
		return nil, 0, err
	}
	if len(parts) == 1 {
		return numDims, numFactor, nil
	}
	denDims, denFactor, err := parseTerm(parts[1])
	if err != nil {
		return nil, 0, err
	}
	return numDims.sub(denDims), numFactor / denFactor, nil
}

func parseTerm(term string) (dims, float64, error) {
	term = strings.TrimSpace(term)
	symbol := term
	power := 1
	if idx := strings.Index(term, "**"); idx >= 0 {
		symbol = term[:idx]
		var p int
		if _, err := fmt.Sscanf(term[idx+2:], "%d", &p); err != nil {
			return nil, 0, errs.New(errs.UnitMismatch, fmt.Sprintf("invalid exponent in unit term %q", term))
		}
		power = p
	}
	u, ok := atomicUnits[symbol]
	if !ok {
		return nil, 0, errs.New(errs.UnitMismatch, fmt.Sprintf("unknown unit symbol %q", symbol))
	}
	d := dims{}
	for k, v := range u.dims {
		d[k] = v * power
	}
	factor := 1.0
	base := u.factor
	for i := 0; i < power; i++ {
		factor *= base
	}
	if power < 0 {
		factor = 1
		for i := 0; i < -power; i++ {
			factor *= base
		}
		factor = 1 / factor
	}
	return d, factor, nil
}

// Of returns the quantity representing 1.0 of the given unit string.
func Of(unit string) (Quantity, error) {
	return New(1.0, unit)
}

// New returns the quantity representing value expressed in unit.
func New(value float64, unit string) (Quantity, error) {
	d, factor, err := Parse(unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{dims: d, mag: value * factor}, nil
}

// Mul returns q*o, combining dimensions additively.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{dims: q.dims.add(o.dims), mag: q.mag * o.mag}
}

// Div returns q/o, combining dimensions by subtraction.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{dims: q.dims.sub(o.dims), mag: q.mag / o.mag}
}

// Reduced returns the magnitude of q if its dimension vector has fully
// cancelled to dimensionless, and errs.UnitMismatch otherwise.
func (q Quantity) Reduced() (float64, error) {
	if !q.dims.isDimensionless() {
		return 0, errs.New(errs.UnitMismatch, fmt.Sprintf("quantity does not reduce to dimensionless (residual dims: %v)", q.dims.clean()))
	}
	return q.mag, nil
}

// Convert converts value from fromUnit to toUnit. Both units must resolve to
// the same dimension vector, or errs.UnitMismatch is returned.
func Convert(value float64, fromUnit, toUnit string) (float64, error) {
	from, err := New(value, fromUnit)
	if err != nil {
		return 0, err
	}
	toOne, err := Of(toUnit)
	if err != nil {
		return 0, err
	}
	if !from.dims.sub(toOne.dims).isDimensionless() {
		return 0, errs.New(errs.UnitMismatch, fmt.Sprintf("cannot convert %q to %q: incompatible dimensions", fromUnit, toUnit))
	}
	return from.mag / toOne.mag, nil
}

// SpecificMode enumerates the normalizing property used to derive a specific
// (per-mass/area/volume) capacity column.
type SpecificMode string

const (
	Gravimetric SpecificMode = "gravimetric"
	Areal       SpecificMode = "areal"
	Volumetric  SpecificMode = "volumetric"
	Absolute    SpecificMode = "absolute"
)

// SpecificFactor computes the conversion factor applied to an absolute
// (cellpy-unit-scale) capacity column to produce its specific variant, per
// spec §4.5:
//
//	factor = raw_charge_unit / (cellpy_charge_unit / cellpy_specific_unit) / normalizer_value_in_cellpy_units
//
// normalizer is the mass (gravimetric), active_electrode_area (areal) or
// active_electrode_volume (volumetric) value, expressed in normalizerUnit.
// For Absolute mode, factor is always 1 and normalizer/normalizerUnit/
// specificUnit are ignored.
func SpecificFactor(mode SpecificMode, rawChargeUnit, cellpyChargeUnit, specificUnit string, normalizer float64, normalizerUnit string) (float64, error) {
	if mode == Absolute {
		return 1.0, nil
	}
	rawQ, err := Of(rawChargeUnit)
	if err != nil {
		return 0, err
	}
	cellpyQ, err := Of(cellpyChargeUnit)
	if err != nil {
		return 0, err
	}
	specificQ, err := Of(specificUnit)
	if err != nil {
		return 0, err
	}
	normalizerQ, err := New(normalizer, normalizerUnit)
	if err != nil {
		return 0, err
	}
	toUnit := cellpyQ.Div(specificQ)
	factorQ := rawQ.Div(toUnit).Div(normalizerQ)
	return factorQ.Reduced()
}
