package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recover runs fn and turns a panic into an error carrying the run ID
func Recover(ctx context.Context, logger *zap.Logger, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			runID := GetRunID(ctx)
			logger.Error("panic recovered",
				zap.String("run_id", runID),
				zap.Any("error", p),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("internal error in run %s: %v", runID, p)
		}
	}()
	return fn(ctx)
}
