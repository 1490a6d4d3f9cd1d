// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/SmoothBot/tx-latency-bench/internal/conf"
	"github.com/SmoothBot/tx-latency-bench/internal/confutil"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Mode says whether the terminal is free for log output
type Mode int

const (
	// ModeConsole writes logs to the configured output
	ModeConsole Mode = iota
	// ModeInteractive always writes logs to the log file, as the terminal is drawn by the game
	ModeInteractive
)

// long enough for a full 0x-prefixed transaction hash
const maxFieldLength = 66

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext
)

type ctxLogKey struct{}

func InitConfig(lc *conf.LogConfig, mode Mode) {
	SetLevel(confutil.StringNotEmpty(lc.Level, *conf.LogDefaults.Level))

	output := confutil.StringNotEmpty(lc.Output, *conf.LogDefaults.Output)
	if mode == ModeInteractive {
		output = "file"
	}
	switch output {
	case "file":
		filename := confutil.StringNotEmpty(lc.File.Filename, *conf.LogDefaults.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		logrus.SetOutput(newFileOutput(filename, &lc.File))
	case "stdout":
		logrus.SetOutput(os.Stdout)
	default:
		logrus.SetOutput(os.Stderr)
	}

	format := confutil.StringNotEmpty(lc.Format, *conf.LogDefaults.Format)
	logrus.SetReportCaller(format == "detailed")
	formatter := newFormatter(format, lc, mode)
	if confutil.Bool(lc.UTC, *conf.LogDefaults.UTC) {
		formatter = &utcFormat{f: formatter}
	}
	logrus.SetFormatter(formatter)
}

func newFileOutput(filename string, fc *conf.LogFileConfig) *lumberjack.Logger {
	maxSizeBytes := confutil.ByteSize(fc.MaxSize, 0, *conf.LogDefaults.File.MaxSize)
	maxAge := confutil.DurationMin(fc.MaxAge, 0, *conf.LogDefaults.File.MaxAge)
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    int(math.Ceil(float64(maxSizeBytes) / 1024 / 1024)), // megabytes, rounded up
		MaxBackups: confutil.IntMin(fc.MaxBackups, 0, *conf.LogDefaults.File.MaxBackups),
		MaxAge:     int(math.Ceil(float64(maxAge) / float64(24*time.Hour))), // days, rounded up
		Compress:   confutil.Bool(fc.Compress, *conf.LogDefaults.File.Compress),
	}
}

func newFormatter(format string, lc *conf.LogConfig, mode Mode) logrus.Formatter {
	timestampFormat := confutil.StringNotEmpty(lc.TimeFormat, *conf.LogDefaults.TimeFormat)
	// color codes in a log file are noise, unless explicitly forced
	disableColor := confutil.Bool(lc.DisableColor, mode == ModeInteractive)
	forceColor := confutil.Bool(lc.ForceColor, *conf.LogDefaults.ForceColor)
	switch format {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  confutil.StringNotEmpty(lc.JSON.TimestampField, *conf.LogDefaults.JSON.TimestampField),
				logrus.FieldKeyLevel: confutil.StringNotEmpty(lc.JSON.LevelField, *conf.LogDefaults.JSON.LevelField),
				logrus.FieldKeyMsg:   confutil.StringNotEmpty(lc.JSON.MessageField, *conf.LogDefaults.JSON.MessageField),
				logrus.FieldKeyFunc:  confutil.StringNotEmpty(lc.JSON.FuncField, *conf.LogDefaults.JSON.FuncField),
				logrus.FieldKeyFile:  confutil.StringNotEmpty(lc.JSON.FileField, *conf.LogDefaults.JSON.FileField),
			},
		}
	case "detailed":
		return &logrus.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		}
	default:
		return &prefixed.TextFormatter{
			DisableColors:   disableColor,
			ForceColors:     forceColor,
			TimestampFormat: timestampFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
}

// Output returns where log lines are currently written
func Output() io.Writer {
	return logrus.StandardLogger().Out
}

// WithLogField adds the specified field to the logger in the context
func WithLogField(ctx context.Context, key, value string) context.Context {
	if len(value) > maxFieldLength {
		value = value[0:maxFieldLength] + "..."
	}
	return context.WithValue(ctx, ctxLogKey{}, loggerFromContext(ctx).WithField(key, value))
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxLogKey{}).(*logrus.Entry); ok {
		return logger
	}
	return rootLogger
}

func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

type utcFormat struct {
	f logrus.Formatter
}

func (utc *utcFormat) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return utc.f.Format(e)
}
