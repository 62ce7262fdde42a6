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

package selector

import (
	"testing"

	"github.com/jepegit/cellpy-go/pkg/headers"
	"github.com/stretchr/testify/assert"
)

func TestNonCV(t *testing.T) {
	assert.True(t, NonCV("cv_charge"))
	assert.True(t, NonCV("cv_discharge"))
	assert.False(t, NonCV("charge"))
}

func TestNonRest(t *testing.T) {
	assert.True(t, NonRest("rest"))
	assert.False(t, NonRest("charge"))
}

func TestNonOCV(t *testing.T) {
	assert.True(t, NonOCV("ocvrlx_up"))
	assert.True(t, NonOCV("ocvrlx_down"))
	assert.False(t, NonOCV("rest"))
}

func TestOnlyCV(t *testing.T) {
	assert.False(t, OnlyCV("cv_charge"))
	assert.True(t, OnlyCV("charge"))
}

func TestCustomExcludesByTypeOrStep(t *testing.T) {
	c := Custom([]string{"rest"}, []float64{3})
	assert.True(t, c("rest", 0))
	assert.True(t, c("charge", 3))
	assert.False(t, c("charge", 1))
}

func TestChargeDischargeAlias(t *testing.T) {
	assert.True(t, ChargeDischarge("charge"))
	assert.True(t, ChargeDischarge("discharge"))
	assert.False(t, ChargeDischarge("cv_charge"))
}

func TestExcludedDelta(t *testing.T) {
	sh := headers.StepTableHeaders
	steps := []map[string]interface{}{
		{
			sh.Cycle: 1.0, sh.Type: "cv_charge",
			headers.StatColumnName("charge", "first"):    1.0,
			headers.StatColumnName("charge", "last"):     1.5,
			headers.StatColumnName("discharge", "first"): 0.0,
			headers.StatColumnName("discharge", "last"):  0.0,
		},
		{
			sh.Cycle: 1.0, sh.Type: "charge",
			headers.StatColumnName("charge", "first"):    0.0,
			headers.StatColumnName("charge", "last"):     1.0,
			headers.StatColumnName("discharge", "first"): 0.0,
			headers.StatColumnName("discharge", "last"):  0.0,
		},
		{
			sh.Cycle: 2.0, sh.Type: "cv_charge",
			headers.StatColumnName("charge", "first"):    2.0,
			headers.StatColumnName("charge", "last"):     3.0,
			headers.StatColumnName("discharge", "first"): 0.0,
			headers.StatColumnName("discharge", "last"):  0.0,
		},
	}

	chargeAdj, dischargeAdj := ExcludedDelta(steps, 1.0, NonCV)
	assert.InDelta(t, 0.5, chargeAdj, 1e-9)
	assert.InDelta(t, 0.0, dischargeAdj, 1e-9)

	chargeAdj, dischargeAdj = ExcludedDelta(steps, 3.0, NonCV)
	assert.Equal(t, 0.0, chargeAdj)
	assert.Equal(t, 0.0, dischargeAdj)
}
