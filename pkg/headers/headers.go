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

// Package headers holds the canonical header catalogues for the four core
// tables (raw, steps, summary, journal) plus the header-translation facility
// that maps historical header sets onto the current one.
package headers

import "github.com/blang/semver"

// CurrentFileVersion is the schema version the catalogues in this package
// correspond to (spec §6 "Persisted archive").
var CurrentFileVersion = semver.MustParse("8.0.0")

// legacyRawHeaders maps a pre-v8 native raw-table header name onto its
// current canonical counterpart.
var legacyRawHeaders = map[string]string{
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

// TranslateLegacy maps name, a native header recorded at the given archive
// version, onto its current canonical name, per spec §6's archive version
// contract: "loaders for older versions translate legacy header names into
// the current set using a fixed translation table". The second return
// value is false when version is not older than CurrentFileVersion, or
// when the fixed table has no entry for name (the caller then drops the
// column, per the same contract).
func TranslateLegacy(version, name string) (string, bool) {
	v, err := semver.Parse(version)
	if err != nil || !v.LT(CurrentFileVersion) {
		return name, false
	}
	canonical, ok := legacyRawHeaders[name]
	return canonical, ok
}

// Raw holds the canonical semantic column names for the raw time-series
// table (spec §3.1).
type Raw struct {
	DataPoint           string
	TestTime            string
	StepTime            string
	DateTime            string
	CycleIndex          string
	StepIndex           string
	SubStepIndex        string
	Current             string
	Voltage             string
	ReferenceVoltage    string
	ChargeCapacity      string
	ChargeEnergy        string
	DischargeCapacity   string
	DischargeEnergy     string
	InternalResistance  string
	Power               string
	IsFCData            string
	TestID              string
	DVDt                string
	Frequency           string
	Amplitude           string
	ACIPhaseAngle       string
	RefACIPhaseAngle    string
	ACImpedance         string
	RefACImpedance      string
	ChannelID           string
	DataFlag            string
	TestName            string
}

// NormalHeaders is the current (cellpy-file-version 8) canonical raw header
// catalogue.
var NormalHeaders = Raw{
	DataPoint:          "data_point",
	TestTime:           "test_time",
	StepTime:           "step_time",
	DateTime:           "date_time",
	CycleIndex:         "cycle_index",
	StepIndex:          "step_index",
	SubStepIndex:       "sub_step_index",
	Current:            "current",
	Voltage:            "voltage",
	ReferenceVoltage:   "reference_voltage",
	ChargeCapacity:     "charge_capacity",
	ChargeEnergy:       "charge_energy",
	DischargeCapacity:  "discharge_capacity",
	DischargeEnergy:    "discharge_energy",
	InternalResistance: "internal_resistance",
	Power:              "power",
	IsFCData:           "is_fc_data",
	TestID:             "test_id",
	DVDt:               "dv_dt",
	Frequency:          "frequency",
	Amplitude:          "amplitude",
	ACIPhaseAngle:      "aci_phase_angle",
	RefACIPhaseAngle:   "ref_aci_phase_angle",
	ACImpedance:        "ac_impedance",
	RefACImpedance:     "ref_ac_impedance",
	ChannelID:          "channel_id",
	DataFlag:           "data_flag",
	TestName:           "test_name",
}

// RequiredRaw is the minimal column set §3.1 declares required on the raw
// table; a MISSING_REQUIRED_COLUMN error is raised if any is absent after
// post-processing.
func RequiredRaw() []string {
	h := NormalHeaders
	return []string{
		h.DataPoint, h.TestTime, h.StepTime, h.DateTime, h.CycleIndex,
		h.StepIndex, h.Current, h.Voltage, h.ChargeCapacity, h.DischargeCapacity,
	}
}

// Steps holds the canonical column names for the per-step statistics table.
type Steps struct {
	Cycle               string
	Step                string
	UStep               string
	SubStep             string
	Type                string
	SubType             string
	Info                string
	Point               string
	TestTime             string
	StepTime             string
	Voltage              string
	Current              string
	Charge               string
	Discharge            string
	InternalResistance   string
	InternalResistancePct string
	RateAvr              string
}

// StepTableHeaders is the current canonical step-table header catalogue.
var StepTableHeaders = Steps{
	Cycle:                 "cycle",
	Step:                  "step",
	UStep:                 "ustep",
	SubStep:               "sub_step",
	Type:                  "type",
	SubType:               "sub_type",
	Info:                  "info",
	Point:                 "point",
	TestTime:              "test_time",
	StepTime:              "step_time",
	Voltage:               "voltage",
	Current:               "current",
	Charge:                "charge",
	Discharge:             "discharge",
	InternalResistance:    "ir",
	InternalResistancePct: "ir_pct_change",
	RateAvr:               "rate_avr",
}

// StatColumns is the set of step-level stat columns computed for each of
// {voltage, current, charge, discharge, internal_resistance, point,
// test_time, step_time} (spec §4.2): first, last, min, max, avr, std, delta.
var StatColumns = []string{"voltage", "current", "charge", "discharge", "internal_resistance", "point", "test_time", "step_time"}
var StatSuffixes = []string{"first", "last", "min", "max", "avr", "std", "delta"}

// StatColumnName returns the composite step-table column name for a base
// column and a stat suffix, e.g. StatColumnName("voltage", "first") ==
// "voltage_first".
func StatColumnName(base, suffix string) string {
	return base + "_" + suffix
}

// Summary holds the canonical column names for the per-cycle summary table.
type Summary struct {
	CycleIndex         string
	DataPoint          string
	TestTime           string
	DateTime           string
	DischargeCapacity  string
	ChargeCapacity     string

	CoulombicEfficiency           string
	CumulatedCoulombicEfficiency  string
	CoulombicDifference           string
	CumulatedCoulombicDifference  string

	CumulatedChargeCapacity       string
	CumulatedDischargeCapacity    string
	DischargeCapacityLoss         string
	ChargeCapacityLoss            string
	CumulatedDischargeCapacityLoss string
	CumulatedChargeCapacityLoss    string

	ShiftedChargeCapacity    string
	ShiftedDischargeCapacity string

	CumulatedRIC           string
	CumulatedRICSEI        string
	CumulatedRICDisconnect string

	EndVoltageDischarge string
	EndVoltageCharge    string
	IRDischarge         string
	IRCharge            string

	ChargeCRate    string
	DischargeCRate string

	NormalizedCycleIndex string
}

// SummaryHeaders is the current canonical summary-table header catalogue.
var SummaryHeaders = Summary{
	CycleIndex:        "cycle_index",
	DataPoint:         "data_point",
	TestTime:          "test_time",
	DateTime:          "date_time",
	DischargeCapacity: "discharge_capacity",
	ChargeCapacity:    "charge_capacity",

	CoulombicEfficiency:          "coulombic_efficiency",
	CumulatedCoulombicEfficiency: "cumulated_coulombic_efficiency",
	CoulombicDifference:          "coulombic_difference",
	CumulatedCoulombicDifference: "cumulated_coulombic_difference",

	CumulatedChargeCapacity:        "cumulated_charge_capacity",
	CumulatedDischargeCapacity:     "cumulated_discharge_capacity",
	DischargeCapacityLoss:          "discharge_capacity_loss",
	ChargeCapacityLoss:             "charge_capacity_loss",
	CumulatedDischargeCapacityLoss: "cumulated_discharge_capacity_loss",
	CumulatedChargeCapacityLoss:    "cumulated_charge_capacity_loss",

	ShiftedChargeCapacity:    "shifted_charge_capacity",
	ShiftedDischargeCapacity: "shifted_discharge_capacity",

	CumulatedRIC:           "cumulated_ric",
	CumulatedRICSEI:        "cumulated_ric_sei",
	CumulatedRICDisconnect: "cumulated_ric_disconnect",

	EndVoltageDischarge: "end_voltage_discharge",
	EndVoltageCharge:    "end_voltage_charge",
	IRDischarge:         "ir_discharge",
	IRCharge:            "ir_charge",

	ChargeCRate:    "charge_c_rate",
	DischargeCRate: "discharge_c_rate",

	NormalizedCycleIndex: "normalized_cycle_index",
}

// SpecificPostfixes are the postfix keys composed onto base summary column
// names to produce specific (normalized) variants; spec §4.3 "Specific
// variants" and §9's note that the postfix convention becomes a composite
// key rather than a runtime string split.
const (
	PostfixGravimetric = "gravimetric"
	PostfixAreal       = "areal"
	PostfixAbsolute    = "absolute"
)

// SpecificColumnName composes the specific-variant column name for base,
// e.g. SpecificColumnName("charge_capacity", PostfixGravimetric) ==
// "charge_capacity_gravimetric".
func SpecificColumnName(base, postfix string) string {
	return base + "_" + postfix
}

// SpecificColumns is the set of base summary columns that §4.3 requires a
// specific (_gravimetric/_areal/_absolute) variant of.
func (s Summary) SpecificColumns() []string {
	return []string{
		s.DischargeCapacity, s.ChargeCapacity,
		s.CumulatedChargeCapacity, s.CumulatedDischargeCapacity,
		s.CoulombicDifference, s.CumulatedCoulombicDifference,
		s.DischargeCapacityLoss, s.ChargeCapacityLoss,
		s.CumulatedDischargeCapacityLoss, s.CumulatedChargeCapacityLoss,
		s.ShiftedChargeCapacity, s.ShiftedDischargeCapacity,
	}
}

// Journal holds the canonical column names for the per-journal metadata
// table (out of core scope for population, but named here since the loader
// framework and archive contract both reference it).
type Journal struct {
	Filename         string
	Mass             string
	TotalMass        string
	Loading          string
	Area             string
	NomCap           string
	Experiment       string
	Label            string
	CellType         string
	Instrument       string
	RawFileNames     string
	CellpyFileName   string
	Group            string
	SubGroup         string
	Comment          string
}

// JournalHeaders is the current canonical journal-table header catalogue.
var JournalHeaders = Journal{
	Filename:       "filename",
	Mass:           "mass",
	TotalMass:      "total_mass",
	Loading:        "loading",
	Area:           "area",
	NomCap:         "nom_cap",
	Experiment:     "experiment",
	Label:          "label",
	CellType:       "cell_type",
	Instrument:     "instrument",
	RawFileNames:   "raw_file_names",
	CellpyFileName: "cellpy_file_name",
	Group:          "group",
	SubGroup:       "sub_group",
	Comment:        "comment",
}
