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

package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restRow(cycle, step, point, voltage float64) cell.Row {
	return cell.Row{
		"cycle_index": cycle, "step_index": step, "sub_step_index": 1.0,
		"data_point": point, "current": 0.0, "voltage": voltage,
		"charge_capacity": 0.0, "discharge_capacity": 0.0, "internal_resistance": 0.0,
		"test_time": point, "step_time": point,
	}
}

func chargeRow(cycle, step, point, current, voltage, charge float64) cell.Row {
	return cell.Row{
		"cycle_index": cycle, "step_index": step, "sub_step_index": 1.0,
		"data_point": point, "current": current, "voltage": voltage,
		"charge_capacity": charge, "discharge_capacity": 0.0, "internal_resistance": 0.0,
		"test_time": point, "step_time": point,
	}
}

func TestClassifyRest(t *testing.T) {
	c := cell.New(cell.Metadata{Limits: cell.DefaultLimits, NominalCapacity: 1.0})
	c.Raw = cell.Table{
		restRow(1, 1, 1, 3.70),
		restRow(1, 1, 2, 3.701),
		restRow(1, 1, 3, 3.699),
	}
	require.NoError(t, Classify(c, FullCell))
	require.Len(t, c.Steps, 1)
	assert.Equal(t, string(Rest), c.Steps[0]["type"])
}

func TestClassifyChargeStepAndRateAvr(t *testing.T) {
	c := cell.New(cell.Metadata{Limits: cell.DefaultLimits, NominalCapacity: 1.0})
	c.Raw = cell.Table{
		chargeRow(1, 1, 1, 1.0, 3.0, 0.0),
		chargeRow(1, 1, 2, 1.0, 3.5, 0.5),
		chargeRow(1, 1, 3, 1.0, 4.0, 1.0),
	}
	require.NoError(t, Classify(c, FullCell))
	require.Len(t, c.Steps, 1)
	assert.Equal(t, string(Charge), c.Steps[0]["type"])
	assert.InDelta(t, 1.0, c.Steps[0]["rate_avr"], 1e-9)
}

func TestClassifyPolarityCathodeHalf(t *testing.T) {
	// Under a cathode-half cycle, positive current discharges rather than charges.
	c := cell.New(cell.Metadata{Limits: cell.DefaultLimits, NominalCapacity: 1.0})
	c.Raw = cell.Table{
		chargeRow(1, 1, 1, 1.0, 3.0, 0.0),
		chargeRow(1, 1, 2, 1.0, 3.5, 0.5),
	}
	require.NoError(t, Classify(c, CathodeHalf))
	assert.Equal(t, string(Discharge), c.Steps[0]["type"])
}

func TestClassifyDeterministic(t *testing.T) {
	// P8-style: classifying the same raw table twice yields identical output.
	build := func() *cell.Cell {
		c := cell.New(cell.Metadata{Limits: cell.DefaultLimits, NominalCapacity: 1.0})
		c.Raw = cell.Table{
			chargeRow(1, 1, 1, 1.0, 3.0, 0.0),
			chargeRow(1, 1, 2, 1.0, 3.5, 0.5),
			restRow(1, 2, 3, 3.5),
		}
		return c
	}
	a, b := build(), build()
	require.NoError(t, Classify(a, FullCell))
	require.NoError(t, Classify(b, FullCell))
	if diff := cmp.Diff(a.Steps, b.Steps); diff != "" {
		t.Errorf("classifying the same raw table twice produced different steps (-a +b):\n%s", diff)
	}
}

func TestSegmentRawPartitionsByNaturalKey(t *testing.T) {
	raw := cell.Table{
		restRow(1, 1, 1, 3.7),
		restRow(1, 1, 2, 3.7),
		restRow(1, 2, 3, 3.7),
		restRow(2, 1, 4, 3.7),
	}
	segs := segmentRaw(raw)
	require.Len(t, segs, 3)
	assert.Equal(t, []int{0, 1}, segs[0].rows)
	assert.Equal(t, []int{2}, segs[1].rows)
	assert.Equal(t, []int{3}, segs[2].rows)
}
