// Diagnostic logging for failed probes, a thin wrapper around zap.
//
// The console never shows why a probe failed (every failure prints as
// 000); this log does:
//
//	diag, _ := log.NewDiagnostics("./logs/squidscan.log")
//	defer diag.Sync()
//	diag.Info("probe failed", zap.Int("port", 80))
package log

import (
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLevel = zapcore.InfoLevel

// NewDiagnostics returns a logger writing to a rotating file at path. An
// empty path gives a no-op logger.
func NewDiagnostics(path string) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}
	core := zapcore.NewCore(getEncoder(), getLogWriter(path), defaultLevel)
	return zap.New(core, zap.AddCaller())
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.LineEnding = zapcore.DefaultLineEnding
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeTime = timeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	encoderConfig.EncodeName = zapcore.FullNameEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func getLogWriter(path string) zapcore.WriteSyncer {
	lumberJackLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    60,
		MaxBackups: 6,
		MaxAge:     60,
		Compress:   false,
	}
	return zapcore.AddSync(lumberJackLogger)
}
