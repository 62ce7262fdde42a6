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

package arbinsql

import (
	"testing"

	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromDecodesWeaklyTypedTestID(t *testing.T) {
	o, err := optionsFrom(map[string]interface{}{
		"driver_name": "odbc",
		"dsn":         "dsn=arbin",
		"test_id":     42, // plain int, not int64
	})
	require.NoError(t, err)
	assert.Equal(t, "odbc", o.DriverName)
	assert.Equal(t, "dsn=arbin", o.DSN)
	assert.Equal(t, int64(42), o.TestID)
}

func TestOptionsFromMissingDriverName(t *testing.T) {
	_, err := optionsFrom(map[string]interface{}{
		"dsn":     "dsn=arbin",
		"test_id": 1,
	})
	require.Error(t, err)
}

func TestOptionsFromMissingTestID(t *testing.T) {
	_, err := optionsFrom(map[string]interface{}{
		"driver_name": "odbc",
		"dsn":         "dsn=arbin",
	})
	require.Error(t, err)
}

func TestConvertTableUnitsScalesAhToMilliampHours(t *testing.T) {
	table := cell.Table{
		{"charge_capacity": 1.0, "discharge_capacity": 0.5},
	}
	require.NoError(t, convertTableUnits(table))
	assert.InDelta(t, 1000.0, table[0]["charge_capacity"], 1e-9)
	assert.InDelta(t, 500.0, table[0]["discharge_capacity"], 1e-9)
}
