/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

var (
	infoTag    = forcedColor(color.FgGreen).SprintFunc()
	warningTag = forcedColor(color.FgYellow).SprintFunc()
	errorTag   = forcedColor(color.FgRed).SprintFunc()
)

// forcedColor ignores color.NoColor; whether to colorize is decided per formatter.
func forcedColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

// LineFormatter renders an entry as "[TAG] message\n".
// Fields attached to the entry are not printed.
type LineFormatter struct {
	DisableColors bool
}

var _ log.Formatter = (*LineFormatter)(nil)

// Format implements logrus.Formatter.
func (f *LineFormatter) Format(entry *log.Entry) ([]byte, error) {
	sev := severityOf(entry.Level)

	var b bytes.Buffer
	b.WriteByte('[')
	b.WriteString(f.tag(sev))
	b.WriteString("] ")
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *LineFormatter) tag(sev Severity) string {
	if f.DisableColors {
		return sev.String()
	}

	switch sev {
	case Warning:
		return warningTag(sev.String())
	case Error:
		return errorTag(sev.String())
	default:
		return infoTag(sev.String())
	}
}

func severityOf(level log.Level) Severity {
	switch level {
	case log.WarnLevel:
		return Warning
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return Error
	default:
		return Info
	}
}
