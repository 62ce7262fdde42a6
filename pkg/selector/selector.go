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

// Package selector implements the pure per-cycle representative-row
// filters (spec §4.4) the summarizer installs to exclude specific step
// types from the capacity channels of each cycle's representative row.
package selector

import (
	"strings"

	"github.com/jepegit/cellpy-go/pkg/classify"
	"github.com/jepegit/cellpy-go/pkg/headers"
)

// Selector decides, for each step row, whether it should be excluded from
// a cycle's representative-row aggregation.
type Selector func(stepType string) bool

// NonCV excludes every step type starting with "cv_".
func NonCV(stepType string) bool {
	return strings.HasPrefix(stepType, "cv_")
}

// NonRest excludes rest steps.
func NonRest(stepType string) bool {
	return stepType == string(classify.Rest)
}

// NonOCV excludes both ocv relaxation directions - the "ocv" helper alias
// from the original instrument's selector API.
func NonOCV(stepType string) bool {
	return stepType == string(classify.OCVRlxUp) || stepType == string(classify.OCVRlxDown)
}

// OnlyCV keeps only cv_charge/cv_discharge steps, i.e. excludes everything
// else.
func OnlyCV(stepType string) bool {
	return !strings.HasPrefix(stepType, "cv_")
}

// Custom builds an exclusion predicate over a step's type and ustep that
// excludes any step whose type is in excludeTypes or whose ustep is in
// excludeSteps. Because it takes the ustep as well, it is not a Selector.
func Custom(excludeTypes []string, excludeSteps []float64) func(stepType string, ustep float64) bool {
	typeSet := make(map[string]struct{}, len(excludeTypes))
	for _, t := range excludeTypes {
		typeSet[t] = struct{}{}
	}
	stepSet := make(map[float64]struct{}, len(excludeSteps))
	for _, s := range excludeSteps {
		stepSet[s] = struct{}{}
	}
	return func(stepType string, ustep float64) bool {
		if _, ok := typeSet[stepType]; ok {
			return true
		}
		_, ok := stepSet[ustep]
		return ok
	}
}

// ChargeDischarge is the "charge_discharge" helper alias: it matches both
// plain charge and discharge step types (not their cv/taper variants).
func ChargeDischarge(stepType string) bool {
	return stepType == string(classify.Charge) || stepType == string(classify.Discharge)
}

// OCV is the "ocv" helper alias: it matches both ocv relaxation directions.
func OCV(stepType string) bool {
	return NonOCV(stepType)
}

// ExcludedDelta sums the (last - first) charge and discharge deltas of
// every excluded segment in steps belonging to cycle and returns those
// sums, which the caller subtracts from the capacity channels of the
// cycle's representative row. Zero adjustment is returned if the cycle has
// no excluded segments.
func ExcludedDelta(steps []map[string]interface{}, cycle float64, exclude Selector) (chargeAdj, dischargeAdj float64) {
	sh := headers.StepTableHeaders
	for _, step := range steps {
		cy, _ := step[sh.Cycle].(float64)
		if cy != cycle {
			continue
		}
		stepType, _ := step[sh.Type].(string)
		if !exclude(stepType) {
			continue
		}
		chargeFirst, _ := step[headers.StatColumnName("charge", "first")].(float64)
		chargeLast, _ := step[headers.StatColumnName("charge", "last")].(float64)
		dischargeFirst, _ := step[headers.StatColumnName("discharge", "first")].(float64)
		dischargeLast, _ := step[headers.StatColumnName("discharge", "last")].(float64)
		chargeAdj += chargeLast - chargeFirst
		dischargeAdj += dischargeLast - dischargeFirst
	}
	return chargeAdj, dischargeAdj
}
