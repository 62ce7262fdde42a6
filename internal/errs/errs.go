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

// Package errs defines the closed error taxonomy shared by every loader,
// processor, classifier and summarizer stage (spec §7).
package errs

import "fmt"

// Kind is the closed set of error kinds raised by the core.
type Kind string

const (
	FileNotFound                Kind = "FILE_NOT_FOUND"
	UnreadableFile               Kind = "UNREADABLE_FILE"
	UnrecognizedFormat           Kind = "UNRECOGNIZED_FORMAT"
	UnsupportedVersion           Kind = "UNSUPPORTED_VERSION"
	MissingRequiredColumn        Kind = "MISSING_REQUIRED_COLUMN"
	UnitMismatch                 Kind = "UNIT_MISMATCH"
	StepClassificationAmbiguous  Kind = "STEP_CLASSIFICATION_AMBIGUOUS"
	BadStep                      Kind = "BAD_STEP"
	EmptyCell                    Kind = "EMPTY_CELL"
	InstrumentNotFound           Kind = "INSTRUMENT_NOT_FOUND"
)

// Error is the concrete error type raised by core components. It always
// carries enough context to locate the offending input: the file path or
// column name involved, and the configuration (instrument/loader) name in
// effect when the error was raised.
type Error struct {
	Kind   Kind
	Path   string // offending file path, if applicable
	Column string // offending column/field name, if applicable
	Config string // configuration/instrument name in effect
	Err    error  // wrapped underlying error, if any
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Config != "" {
		msg += fmt.Sprintf(" [config=%s]", e.Config)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" path=%q", e.Path)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column=%q", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind with no extra context.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf("%s", msg)}
}

// Wrap constructs an Error of the given kind wrapping err.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithColumn returns a copy of e with Column set.
func (e *Error) WithColumn(col string) *Error {
	c := *e
	c.Column = col
	return &c
}

// WithConfig returns a copy of e with Config set.
func (e *Error) WithConfig(name string) *Error {
	c := *e
	c.Config = name
	return &c
}

// Is supports errors.Is by comparing Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
