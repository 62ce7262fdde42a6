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

package cell

import (
	"testing"
	"time"

	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIDIsStale(t *testing.T) {
	base := FileID{Size: 100, LastModified: time.Unix(1000, 0)}

	assert.False(t, base.IsStale(base))
	assert.True(t, base.IsStale(FileID{Size: 200, LastModified: time.Unix(1000, 0)}))
	assert.True(t, base.IsStale(FileID{Size: 100, LastModified: time.Unix(2000, 0)}))
}

func TestNominalCapacityOrDefaultFallsBackToOne(t *testing.T) {
	m := Metadata{}
	assert.Equal(t, 1.0, m.NominalCapacityOrDefault(nil))

	m.NominalCapacity = 2.5
	assert.Equal(t, 2.5, m.NominalCapacityOrDefault(nil))
}

func TestRequireColumnsEmptyCell(t *testing.T) {
	c := New(Metadata{})
	err := c.RequireColumns([]string{"cycle_index"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.New(errs.EmptyCell, ""))
}

func TestRequireColumnsMissing(t *testing.T) {
	c := New(Metadata{})
	c.Raw = Table{Row{"cycle_index": 1.0}}
	err := c.RequireColumns([]string{"cycle_index", "voltage"})
	require.Error(t, err)
	var cerr *errs.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "voltage", cerr.Column)
}

func TestTableColumn(t *testing.T) {
	tbl := Table{
		Row{"voltage": 3.1},
		Row{"voltage": 3.2},
		Row{"other": "x"},
	}
	assert.Equal(t, []float64{3.1, 3.2, 0}, tbl.Column("voltage"))
}
