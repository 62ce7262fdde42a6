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
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	yaml "github.com/goccy/go-yaml"
)

// Formatters describes how to split a delimited text file into cells before
// any column semantics are applied.
type Formatters struct {
	Delimiter   string `yaml:"delimiter,omitempty"`
	SkipRows    int    `yaml:"skip_rows,omitempty" validate:"gte=0"`
	HeaderRow   int    `yaml:"header_row,omitempty" validate:"gte=0"`
	Encoding    string `yaml:"encoding,omitempty" validate:"omitempty,oneof=utf-8 iso-8859-1"`
	Decimal     string `yaml:"decimal,omitempty" validate:"omitempty,oneof=. ,"`
	Thousands   string `yaml:"thousands,omitempty"`
}

// Config is the declarative descriptor every instrument loader is driven
// by: a renaming map from native headers to canonical semantic names, the
// set of columns to retain, the raw unit/limit records, the step-state
// dictionary, and the ordered processing pipeline.
type Config struct {
	Instrument       string            `yaml:"instrument" validate:"required"`
	Extension        string            `yaml:"extension" validate:"required,startswith=."`
	RenameHeaders    map[string]string `yaml:"rename_headers,omitempty"`
	ColumnsToKeep    []string          `yaml:"columns_to_keep,omitempty"`
	KeepAllColumns   bool              `yaml:"keep_all_columns,omitempty"`
	States           map[string]string `yaml:"states,omitempty"`
	UnitLabels       map[string]string `yaml:"unit_labels,omitempty"`
	RawUnits         map[string]string `yaml:"raw_units" validate:"required"`
	RawLimits        map[string]float64 `yaml:"raw_limits,omitempty"`
	Formatters       Formatters        `yaml:"formatters,omitempty"`
	PreProcessors    []string          `yaml:"pre_processors,omitempty" validate:"dive,oneof=remove_empty_lines"`
	PostProcessors   []string          `yaml:"post_processors,omitempty" validate:"dive,oneof=get_column_names rename_headers select_columns_to_keep update_headers_with_units cumulate_capacity_within_cycle split_capacity split_current set_cycle_number_not_zero set_index convert_date_time_to_datetime convert_step_time_to_timedelta convert_test_time_to_timedelta convert_units"`
}

// DefaultPostProcessors is the fixed-order post-processor pipeline spec
// §4.1 names; a Config with no explicit PostProcessors runs these.
var DefaultPostProcessors = []string{
	"get_column_names",
	"rename_headers",
	"select_columns_to_keep",
	"update_headers_with_units",
	"cumulate_capacity_within_cycle",
	"split_capacity",
	"split_current",
	"set_cycle_number_not_zero",
	"set_index",
	"convert_date_time_to_datetime",
	"convert_step_time_to_timedelta",
	"convert_test_time_to_timedelta",
	"convert_units",
}

// validationError renders a go-playground/validator FieldError into a
// message naming the offending loader-config field, in the teacher's
// tag-to-message style.
type validationError struct {
	validator.FieldError
}

func (ve validationError) Error() string {
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%q is a required field", ve.Field())
	case "startswith":
		return fmt.Sprintf("%q must start with %q", ve.Field(), ve.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", ve.Field(), ve.Param())
	case "gte":
		return fmt.Sprintf("%q must be >= %s", ve.Field(), ve.Param())
	}
	return ve.FieldError.Error()
}

type validationErrors []validationError

func (ve validationErrors) Error() string {
	out := make([]string, 0, len(ve))
	for _, e := range ve {
		out = append(out, e.Error())
	}
	sort.Strings(out)
	return strings.Join(out, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type yamlValidator struct {
	v *validator.Validate
}

func (yv yamlValidator) Struct(s interface{}) error {
	err := yv.v.Struct(s)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(validationErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, validationError{e})
	}
	return out
}

// ParseConfig unmarshals and validates a Config descriptor from YAML bytes,
// applying the {{ name }} instrument-name template substitution a custom
// descriptor is allowed to reference for its own instrument field before
// struct validation runs.
func ParseConfig(input []byte, name string) (Config, error) {
	rendered := strings.ReplaceAll(string(input), "{{ name }}", name)
	cfg := Config{}
	yv := yamlValidator{v: newValidator()}
	if err := yaml.UnmarshalContext(context.Background(), []byte(rendered), &cfg, yaml.Strict(), yaml.Validator(yv)); err != nil {
		return Config{}, err
	}
	if len(cfg.PostProcessors) == 0 {
		cfg.PostProcessors = DefaultPostProcessors
	}
	return cfg, nil
}
