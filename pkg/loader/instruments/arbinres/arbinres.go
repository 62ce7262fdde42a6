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

// Package arbinres registers the "res-binary" loader for Arbin's native
// Jet/Access .res format. The file is memory-mapped only to check its
// signature and confirm it is a .res container the companion
// extraction tool can handle; the bulk of the parsing is delegated to that
// subprocess, which writes a normal-table CSV arbinres then reads.
package arbinres

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/jepegit/cellpy-go/internal/errs"
	"github.com/jepegit/cellpy-go/pkg/cell"
	"github.com/jepegit/cellpy-go/pkg/loader"
	"github.com/kardianos/osext"
)

const instrumentName = "res-binary"

var defaultConfig = loader.Config{
	Instrument: instrumentName,
	Extension:  ".res",
	RenameHeaders: map[string]string{
		"Data_Point":         "data_point",
		"Cycle_Index":         "cycle_index",
		"Step_Index":          "step_index",
		"Test_Time":            "test_time",
		"Step_Time":            "step_time",
		"Current":              "current",
		"Voltage":              "voltage",
		"Charge_Capacity":      "charge_capacity",
		"Discharge_Capacity":   "discharge_capacity",
		"DateTime":             "date_time",
	},
	RawUnits: map[string]string{
		"current": "A",
		"charge":  "Ah",
		"voltage": "V",
		"time":    "sec",
		"mass":    "g",
	},
	Formatters: loader.Formatters{
		Delimiter: ",",
	},
}

// resSignature is the magic byte sequence at the head of every Jet/Access
// .res database; mmap-verifying it before spawning the subprocess turns an
// obviously-wrong file into UNRECOGNIZED_FORMAT instead of a confusing
// subprocess failure.
var resSignature = []byte{0x00, 0x01, 0x00, 0x00, 'S', 't', 'a', 'n', 'd', 'a', 'r', 'd', ' ', 'J', 'e', 't', ' ', 'D', 'B'}

func verifySignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	defer data.Unmap()

	if len(data) < len(resSignature) {
		return errs.New(errs.UnrecognizedFormat, "file too small to be a .res database").WithPath(path)
	}
	for i, b := range resSignature {
		if data[i] != b {
			return errs.New(errs.UnrecognizedFormat, "missing Jet/Access signature").WithPath(path)
		}
	}
	return nil
}

// extractorBinary returns the path to the companion extraction tool,
// located relative to this process's own executable the same way a
// bundled subagent binary is found elsewhere in the ecosystem.
func extractorBinary() (string, error) {
	dir, err := osext.ExecutableFolder()
	if err != nil {
		return "", errs.Wrap(errs.UnreadableFile, err)
	}
	name := "cellpy-go-res-extract"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), nil
}

func queryResFile(path string, cfg loader.Config) (cell.Table, error) {
	if err := verifySignature(path); err != nil {
		return nil, err
	}

	extractor, err := extractorBinary()
	if err != nil {
		return nil, err
	}
	csvOut, err := os.CreateTemp("", "cellpy-go-res-*.csv")
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path)
	}
	csvOut.Close()
	defer os.Remove(csvOut.Name())

	cmd := exec.Command(extractor, "--in", path, "--out", csvOut.Name(), "--table", "Normal")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errs.Wrap(errs.UnreadableFile, err).WithPath(path).WithConfig(string(out))
	}

	return loader.ReadDelimitedTable(csvOut.Name(), cfg.Formatters.Delimiter, 0, cfg.Formatters.Encoding)
}

func init() {
	loader.Default.Register(instrumentName, func() loader.Loader {
		return loader.NewAutoLoader(instrumentName, defaultConfig, queryResFile)
	}, ".res")
}
