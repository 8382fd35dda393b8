package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Nop until Init runs so library code can log unconditionally.
func init() {
	Log = zap.NewNop().Sugar()
}

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
