// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Verbose lowers the level from Info to Debug.
	Verbose bool

	// File, when set, receives a copy of every entry with size-based
	// rotation.
	File string

	// Output overrides stderr. Used by tests.
	Output io.Writer

	// NoColors disables ANSI colours, for log files and non-terminals.
	NoColors bool
}

// New returns a logger writing nested-format entries with caller
// information.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	logger.SetReportCaller(true)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{out}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger
}
