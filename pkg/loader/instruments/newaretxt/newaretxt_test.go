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

package newaretxt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jepegit/cellpy-go/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewareTxtRegisteredUnderDefaultRegistry(t *testing.T) {
	l, err := loader.Default.ByName(instrumentName)
	require.NoError(t, err)
	assert.Equal(t, instrumentName, l.Name())
	assert.Equal(t, ".csv", l.RawExt())
}

func TestNewareTxtLoadRenamesAndSplitsCapacityByStepType(t *testing.T) {
	content := "DataPoint,Cycle Index,Steps,Total Time,Current(mA),Voltage(V),Capacity(mAh),Step Type,Oneset Date\n" +
		"1,1,1,1.0,1000.0,3.0,0.5,CC Chg,1\n" +
		"2,1,1,2.0,1000.0,3.5,1.0,CC Chg,2\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := loader.NewTxtLoader(instrumentName, defaultConfig)
	c, err := l.Load(path, nil)
	require.NoError(t, err)
	require.Len(t, c.Raw, 2)

	// current is already mA and gets converted to the canonical A scale.
	assert.InDelta(t, 1.0, c.Raw[0]["current"], 1e-9)
	assert.InDelta(t, 0.5, c.Raw[0]["charge_capacity"], 1e-9)
	assert.InDelta(t, 0.0, c.Raw[0]["discharge_capacity"], 1e-9)
	assert.InDelta(t, 1.5, c.Raw[1]["charge_capacity"], 1e-9)

	_, hasNative := c.Raw[0]["Step Type"]
	assert.False(t, hasNative, "native Step Type column must be renamed away")
}
