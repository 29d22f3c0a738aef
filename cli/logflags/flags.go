// Package logflags configures the zap logger of a command from its flags.
package logflags

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Flags struct {
	Level zapcore.Level
	// Path is stderr, stdout or the name of a log file.  Log files are
	// rotated once they reach MaxSize megabytes.
	Path    string
	MaxSize int
}

// levelValue adapts zapcore.Level to pflag.Value.
type levelValue struct {
	*zapcore.Level
}

func (levelValue) Type() string {
	return "level"
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	f.Level = zapcore.WarnLevel
	fs.Var(levelValue{&f.Level}, "log-level", "logging level (debug, info, warn, error)")
	fs.StringVar(&f.Path, "log-path", "stderr", "where to send logs (stderr, stdout or a file path)")
	fs.IntVar(&f.MaxSize, "log-max-size", 100, "size in megabytes at which a log file is rotated")
}

// Open builds the logger.  Logs written to a terminal are rendered for
// people; everything else is JSON.
func (f *Flags) Open() (*zap.Logger, error) {
	var ws zapcore.WriteSyncer
	var file *os.File
	switch f.Path {
	case "", "stderr":
		file = os.Stderr
	case "stdout":
		file = os.Stdout
	default:
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename: f.Path,
			MaxSize:  f.MaxSize,
		})
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if file != nil {
		ws = zapcore.Lock(file)
		if term.IsTerminal(int(file.Fd())) {
			enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		}
	}
	return zap.New(zapcore.NewCore(enc, ws, f.Level)), nil
}
