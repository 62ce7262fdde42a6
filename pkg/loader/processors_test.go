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

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveEmptyLinesStripsBlanksAndUsesUniqueScratchName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n\nb\n\n\nc\n"), 0o644))

	cleanedA, err := removeEmptyLines(path)
	require.NoError(t, err)
	defer os.Remove(cleanedA)
	cleanedB, err := removeEmptyLines(path)
	require.NoError(t, err)
	defer os.Remove(cleanedB)

	assert.NotEqual(t, cleanedA, cleanedB, "each scratch file must get a unique name")

	content, err := os.ReadFile(cleanedA)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", string(content))
}

func TestRenameHeaders(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"Rec#": 1.0, "Volt": 3.0}}
	renameHeaders(c, map[string]string{"Rec#": "data_point", "Volt": "voltage"})
	assert.Equal(t, 1.0, c.Raw[0]["data_point"])
	assert.Equal(t, 3.0, c.Raw[0]["voltage"])
	_, hasOld := c.Raw[0]["Rec#"]
	assert.False(t, hasOld)
}

func TestSelectColumnsToKeepDropsUnlisted(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"a": 1.0, "b": 2.0, "c": 3.0}}
	selectColumnsToKeep(c, []string{"a", "c"}, false)
	_, hasB := c.Raw[0]["b"]
	assert.False(t, hasB)
	assert.Equal(t, 1.0, c.Raw[0]["a"])
	assert.Equal(t, 3.0, c.Raw[0]["c"])
}

func TestSelectColumnsToKeepAllBypassesFilter(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"a": 1.0, "b": 2.0}}
	selectColumnsToKeep(c, nil, true)
	assert.Len(t, c.Raw[0], 2)
}

func TestSplitCapacityAssignsChargeOrDischarge(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{
		{"capacity": 1.0, "state": "C"},
		{"capacity": 2.0, "state": "D"},
	}
	splitCapacity(c, map[string]string{"charge": "C"})
	assert.Equal(t, 1.0, c.Raw[0]["charge_capacity"])
	assert.Equal(t, 0.0, c.Raw[0]["discharge_capacity"])
	assert.Equal(t, 0.0, c.Raw[1]["charge_capacity"])
	assert.Equal(t, 2.0, c.Raw[1]["discharge_capacity"])
}

func TestCumulateCapacityWithinCycleResetsPerCycle(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{
		{"cycle_index": 1.0, "capacity": 1.0},
		{"cycle_index": 1.0, "capacity": 1.0},
		{"cycle_index": 2.0, "capacity": 1.0},
	}
	cumulateCapacityWithinCycle(c)
	assert.Equal(t, 1.0, c.Raw[0]["capacity"])
	assert.Equal(t, 2.0, c.Raw[1]["capacity"])
	assert.Equal(t, 1.0, c.Raw[2]["capacity"])
}

func TestSetCycleNumberNotZero(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"cycle_index": 0.0}, {"cycle_index": 2.0}}
	setCycleNumberNotZero(c)
	assert.Equal(t, 1.0, c.Raw[0]["cycle_index"])
	assert.Equal(t, 2.0, c.Raw[1]["cycle_index"])
}

func TestConvertTimeToSecondsParsesClockFormat(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"step_time": "01:02:03"}}
	convertTimeToSeconds(c, "step_time")
	assert.InDelta(t, 3723.0, c.Raw[0]["step_time"], 1e-9)
}

func TestConvertUnitsScalesByFactor(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"current": 1000.0}}
	err := convertUnits(c, map[string]string{"current": "mA"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Raw[0]["current"], 1e-9)
}

func TestConvertUnitsSkipsMatchingUnit(t *testing.T) {
	c := cell.New(cell.Metadata{})
	c.Raw = cell.Table{{"voltage": 3.7}}
	err := convertUnits(c, map[string]string{"voltage": "V"})
	require.NoError(t, err)
	assert.Equal(t, 3.7, c.Raw[0]["voltage"])
}
