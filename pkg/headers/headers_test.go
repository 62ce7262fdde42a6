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

package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatColumnName(t *testing.T) {
	assert.Equal(t, "voltage_first", StatColumnName("voltage", "first"))
	assert.Equal(t, "charge_last", StatColumnName("charge", "last"))
}

func TestSpecificColumnName(t *testing.T) {
	assert.Equal(t, "charge_capacity_gravimetric", SpecificColumnName("charge_capacity", PostfixGravimetric))
}

func TestRequiredRawIsSubsetOfNormalHeaders(t *testing.T) {
	required := RequiredRaw()
	assert.NotEmpty(t, required)
	assert.Contains(t, required, NormalHeaders.CycleIndex)
	assert.Contains(t, required, NormalHeaders.ChargeCapacity)
	assert.Contains(t, required, NormalHeaders.DischargeCapacity)
}

func TestSummarySpecificColumnsNonEmpty(t *testing.T) {
	cols := SummaryHeaders.SpecificColumns()
	assert.Contains(t, cols, SummaryHeaders.ChargeCapacity)
	assert.Contains(t, cols, SummaryHeaders.DischargeCapacity)
	assert.NotContains(t, cols, SummaryHeaders.CumulatedRIC)
}

func TestTranslateLegacyMapsOlderVersionHeader(t *testing.T) {
	canonical, ok := TranslateLegacy("6.2.0", "Cycle_Index")
	assert.True(t, ok)
	assert.Equal(t, "cycle_index", canonical)
}

func TestTranslateLegacyCurrentVersionIsNoOp(t *testing.T) {
	_, ok := TranslateLegacy("8.0.0", "Cycle_Index")
	assert.False(t, ok)
}

func TestTranslateLegacyUnknownHeaderIsDropped(t *testing.T) {
	_, ok := TranslateLegacy("6.2.0", "Some_Unmapped_Column")
	assert.False(t, ok)
}
