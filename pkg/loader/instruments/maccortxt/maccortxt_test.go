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

package maccortxt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jepegit/cellpy-go/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaccorTxtRegisteredUnderDefaultRegistry(t *testing.T) {
	l, err := loader.Default.ByName(instrumentName)
	require.NoError(t, err)
	assert.Equal(t, instrumentName, l.Name())
	assert.Equal(t, ".txt", l.RawExt())
}

func TestMaccorTxtClaimsExtension(t *testing.T) {
	l, err := loader.Default.ByExtension("/data/export.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, l.Name())
}

func TestMaccorTxtLoadRenamesAndSplitsCapacityByState(t *testing.T) {
	content := "skiprow junk\nskiprow junk\nskiprow junk\n" +
		"Rec#\tCyc#\tStep\tTestTime\tStepTime\tAmps\tVolts\tAmp-hr\tState\tDPt Time\n" +
		"1\t1\t1\t1.0\t1.0\t1.0\t3.0\t0.5\tC\t1\n" +
		"2\t1\t1\t2.0\t2.0\t1.0\t3.5\t1.0\tC\t2\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "export.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := loader.NewTxtLoader(instrumentName, defaultConfig)
	c, err := l.Load(path, nil)
	require.NoError(t, err)
	require.Len(t, c.Raw, 2)

	// Amp-hr is cumulated within the cycle, then split into
	// charge_capacity/discharge_capacity by the renamed "state" column,
	// then converted from the native Ah to the canonical mAh scale.
	assert.InDelta(t, 500.0, c.Raw[0]["charge_capacity"], 1e-9)
	assert.InDelta(t, 0.0, c.Raw[0]["discharge_capacity"], 1e-9)
	assert.InDelta(t, 1500.0, c.Raw[1]["charge_capacity"], 1e-9)
	assert.InDelta(t, 0.0, c.Raw[1]["discharge_capacity"], 1e-9)

	_, hasNativeState := c.Raw[0]["State"]
	assert.False(t, hasNativeState, "native State column must be renamed away")
}
