package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Named loggers for the different streams the service emits. They default
// to no-ops so tests can exercise handlers without calling Init.
var (
	Audit    = zap.NewNop()
	Error    = zap.NewNop()
	Security = zap.NewNop()
	System   = zap.NewNop()
)

func newLogger(name string, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core).Named(name)
}

// Init builds the real loggers. Everything goes to stdout as JSON; the
// gateway environment collects stdout. Error accepts Warn and up since
// degraded-but-continuing paths (award bookkeeping, cache writes) report
// through it at Warn.
func Init() {
	Audit = newLogger("audit", zapcore.InfoLevel)
	Error = newLogger("error", zapcore.WarnLevel)
	Security = newLogger("security", zapcore.WarnLevel)
	System = newLogger("system", zapcore.InfoLevel)
}

func Sync() {
	_ = Audit.Sync()
	_ = Error.Sync()
	_ = Security.Sync()
	_ = System.Sync()
}
