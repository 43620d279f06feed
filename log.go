package decu

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger opens the log file of a script. Lines are written in the console format with
// timestamps laid out by s.Logging.TimeFmt.
func newLogger(s *Settings, path string) (*zap.Logger, io.Closer, error) {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 3,
	}

	// Touch the file so that a script that never logs still leaves one behind.
	if _, err := file.Write(nil); err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(s.Logging.TimeFmt)
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " "
	cfg.CallerKey = zapcore.OmitKey

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(file), zap.InfoLevel),
	}
	if s.Logging.Console {
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), zap.InfoLevel),
		)
	}

	return zap.New(zapcore.NewTee(cores...)), file, nil
}
