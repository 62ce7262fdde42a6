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

package summary

import (
	"testing"

	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/classify"
	"github.com/jepegit/cellpy-go/pkg/headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cycle, step, point, current, voltage, chargeCap, dischargeCap float64) cell.Row {
	return cell.Row{
		"cycle_index": cycle, "step_index": step, "sub_step_index": 1.0,
		"data_point": point, "current": current, "voltage": voltage,
		"charge_capacity": chargeCap, "discharge_capacity": dischargeCap,
		"internal_resistance": 0.0, "test_time": point, "step_time": point,
		"date_time": point,
	}
}

func twoCycleCell(t *testing.T) *cell.Cell {
	t.Helper()
	c := cell.New(cell.Metadata{Limits: cell.DefaultLimits})
	c.Raw = cell.Table{
		// cycle 1: charge then discharge
		row(1, 1, 1, 1.0, 3.0, 0.0, 0.0),
		row(1, 1, 2, 1.0, 4.0, 2.0, 0.0),
		row(1, 2, 3, -1.0, 4.0, 2.0, 0.0),
		row(1, 2, 4, -1.0, 3.0, 2.0, 1.8),
		// cycle 2: charge then discharge
		row(2, 1, 5, 1.0, 3.0, 2.0, 1.8),
		row(2, 1, 6, 1.0, 4.0, 4.0, 1.8),
		row(2, 2, 7, -1.0, 4.0, 4.0, 1.8),
		row(2, 2, 8, -1.0, 3.0, 4.0, 3.5),
	}
	require.NoError(t, classify.Classify(c, classify.FullCell))
	return c
}

func TestSummarizeCoulombicEfficiencyAndDifference(t *testing.T) {
	c := twoCycleCell(t)
	require.NoError(t, Summarize(c, Options{}))
	require.Len(t, c.Summary, 2)

	sh := headers.SummaryHeaders
	assert.InDelta(t, 90.0, c.Summary[0][sh.CoulombicEfficiency], 1e-9)
	assert.InDelta(t, 0.2, c.Summary[0][sh.CoulombicDifference], 1e-9)

	assert.InDelta(t, 87.5, c.Summary[1][sh.CoulombicEfficiency], 1e-9)
	assert.InDelta(t, 0.7, c.Summary[1][sh.CumulatedCoulombicDifference], 1e-9)
}

func TestSummarizeCumulatedCapacityAndRIC(t *testing.T) {
	c := twoCycleCell(t)
	require.NoError(t, Summarize(c, Options{}))
	sh := headers.SummaryHeaders

	assert.InDelta(t, 6.0, c.Summary[1][sh.CumulatedChargeCapacity], 1e-9)
	assert.InDelta(t, 5.3, c.Summary[1][sh.CumulatedDischargeCapacity], 1e-9)

	assert.True(t, c.Summary[0][sh.CumulatedRIC].(float64) != c.Summary[0][sh.CumulatedRIC].(float64) /* NaN */)
	assert.InDelta(t, (2.0-3.5)/1.8, c.Summary[1][sh.CumulatedRIC], 1e-9)
	assert.InDelta(t, (4.0-1.8)/1.8, c.Summary[1][sh.CumulatedRICSEI], 1e-9)
	assert.InDelta(t, (1.8-3.5)/1.8, c.Summary[1][sh.CumulatedRICDisconnect], 1e-9)
}

func TestSummarizeShiftedBalances(t *testing.T) {
	c := twoCycleCell(t)
	require.NoError(t, Summarize(c, Options{}))
	sh := headers.SummaryHeaders

	assert.InDelta(t, 0.2, c.Summary[0][sh.ShiftedChargeCapacity], 1e-9)
	assert.InDelta(t, 2.2, c.Summary[0][sh.ShiftedDischargeCapacity], 1e-9)
	assert.InDelta(t, 0.7, c.Summary[1][sh.ShiftedChargeCapacity], 1e-9)
	assert.InDelta(t, 4.7, c.Summary[1][sh.ShiftedDischargeCapacity], 1e-9)
}

func TestSummarizeNormalizedCycleIndexFallsBackToNominalOne(t *testing.T) {
	c := twoCycleCell(t)
	require.NoError(t, Summarize(c, Options{}))
	sh := headers.SummaryHeaders

	assert.InDelta(t, 2.0, c.Summary[0][sh.NormalizedCycleIndex], 1e-9)
	assert.InDelta(t, 6.0, c.Summary[1][sh.NormalizedCycleIndex], 1e-9)
}

func TestSummarizeEmptyStepsYieldsNilSummary(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{row(1, 1, 1, 1.0, 3.0, 0.0, 0.0)}
	// c.Steps intentionally left unpopulated: no Classify call.
	require.NoError(t, Summarize(c, Options{}))
	assert.Nil(t, c.Summary)
}

func TestSummarizeMissingRequiredColumnFails(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"cycle_index": 1.0}}
	err := Summarize(c, Options{})
	require.Error(t, err)
}
