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

package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertClose(t *testing.T, want, got, tol float64) {
	t.Helper()
	if math.Abs(want-got)/math.Max(math.Abs(want), 1) > tol {
		t.Fatalf("want %v, got %v (tol %v)", want, got, tol)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	// P5: round-trip convert-and-back returns the original magnitude.
	cases := []struct{ from, to string }{
		{"A", "mA"},
		{"Ah", "mAh"},
		{"V", "mV"},
		{"g", "mg"},
		{"cm**2", "m**2"},
		{"cm**3", "m**3"},
	}
	for _, c := range cases {
		v, err := Convert(1.2345, c.from, c.to)
		require.NoError(t, err)
		back, err := Convert(v, c.to, c.from)
		require.NoError(t, err)
		assertClose(t, 1.2345, back, 1e-12)
	}
}

func TestConvertIncompatible(t *testing.T) {
	_, err := Convert(1, "A", "V")
	require.Error(t, err)
}

func TestSpecificFactorGravimetric(t *testing.T) {
	// S4: raw_units.charge="Ah", cellpy_units.charge="mAh", mass=0.500 mg,
	// cellpy_units.specific_gravimetric="g" => factor = 2_000_000.
	factor, err := SpecificFactor(Gravimetric, "Ah", "mAh", "g", 0.500, "mg")
	require.NoError(t, err)
	assertClose(t, 2_000_000, factor, 1e-9)
}

func TestSpecificFactorAbsolute(t *testing.T) {
	factor, err := SpecificFactor(Absolute, "Ah", "mAh", "g", 0.5, "mg")
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor)
}

func TestParseUnknownUnit(t *testing.T) {
	_, _, err := Parse("not-a-unit")
	require.Error(t, err)
}
