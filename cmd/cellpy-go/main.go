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

// Command cellpy-go runs the Load -> Classify -> Summarize pipeline over a
// single raw instrument file and writes the resulting per-cycle summary
// table as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/classify"
	"github.com/jepegit/cellpy-go/pkg/loader"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/arbinh5"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/arbinres"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/arbinsql"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/maccortxt"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/newarexlsx"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/newaretxt"
	_ "github.com/jepegit/cellpy-go/pkg/loader/instruments/pec"
	"github.com/jepegit/cellpy-go/pkg/summary"
)

var (
	in              = flag.String("in", "", "path to the raw instrument file")
	out             = flag.String("out", "", "path to write the summary CSV to (defaults to stdout)")
	instrumentName  = flag.String("instrument", "", "instrument name to force (defaults to extension-based auto-detection)")
	cycleMode       = flag.String("mode", string(classify.FullCell), "full_cell, anode_half, or cathode_half")
	nominalCapacity = flag.Float64("nominal-capacity", 0, "nominal capacity override in mAh/g; 0 keeps the loader's own default")
)

func main() {
	flag.Parse()
	if *in == "" {
		log.Fatal("cellpy-go: -in is required")
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	l, err := resolveLoader()
	if err != nil {
		return fmt.Errorf("resolving loader: %w", err)
	}

	c, err := l.Load(*in, nil)
	if err != nil {
		return fmt.Errorf("loading %q: %w", *in, err)
	}
	if *nominalCapacity > 0 {
		c.Metadata.NominalCapacity = *nominalCapacity
	}

	if err := classify.Classify(c, classify.CycleMode(*cycleMode)); err != nil {
		return fmt.Errorf("classifying steps: %w", err)
	}
	if err := summary.Summarize(c, summary.Options{Mode: classify.CycleMode(*cycleMode), FindEndVoltage: true, FindIR: true}); err != nil {
		return fmt.Errorf("summarizing cycles: %w", err)
	}

	return writeCSV(c.Summary)
}

func resolveLoader() (loader.Loader, error) {
	if *instrumentName != "" {
		return loader.Default.ByName(*instrumentName)
	}
	return loader.Default.ByExtension(*in)
}

func writeCSV(table cell.Table) error {
	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("creating %q: %w", *out, err)
		}
		defer f.Close()
		return writeCSVTo(f, table)
	}
	return writeCSVTo(w, table)
}

func writeCSVTo(f *os.File, table cell.Table) error {
	columns := columnUnion(table)
	cw := csv.NewWriter(f)
	defer cw.Flush()
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range table {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatCell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}

func columnUnion(table cell.Table) []string {
	seen := map[string]struct{}{}
	for _, row := range table {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
