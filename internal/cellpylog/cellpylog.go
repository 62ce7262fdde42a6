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

// Package cellpylog wraps zap the way the rest of the pipeline expects:
// structured, leveled, and safe to call before a logger has been installed.
package cellpylog

import (
	"go.uber.org/zap"
)

// StructuredLogger is the minimal logging surface every loader, processor
// and summarizer stage is written against. Diagnostics that must not abort
// the pipeline (missing optional column, bad cycle, slow chunked read) are
// logged at Warnf; nothing here ever substitutes for a returned error.
type StructuredLogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	With(args ...interface{}) StructuredLogger
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (z *zapLogger) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }

func (z *zapLogger) With(args ...interface{}) StructuredLogger {
	return &zapLogger{s: z.s.With(args...)}
}

// New builds a StructuredLogger. development=true uses a console encoder
// with caller info, suitable for local loader debugging; development=false
// uses a JSON production encoder.
func New(development bool) StructuredLogger {
	var zl *zap.Logger
	var err error
	if development {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		zl = zap.NewNop()
	}
	return &zapLogger{s: zl.Sugar()}
}

// discard never writes anywhere; used as the zero-value default so that
// packages can log without requiring callers to inject a logger.
type discard struct{}

func (discard) Debugf(string, ...interface{})   {}
func (discard) Infof(string, ...interface{})    {}
func (discard) Warnf(string, ...interface{})    {}
func (discard) Errorf(string, ...interface{})   {}
func (d discard) With(...interface{}) StructuredLogger { return d }

// Default is the package-wide logger used by stages that were not handed an
// explicit one. Replace it once at process start with SetDefault.
var Default StructuredLogger = discard{}

// SetDefault installs l as the package-wide default logger.
func SetDefault(l StructuredLogger) {
	if l == nil {
		l = discard{}
	}
	Default = l
}
