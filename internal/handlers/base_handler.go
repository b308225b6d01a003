package handlers

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

type BaseHandler struct {
	out    io.Writer
	logger *zap.Logger
}

// respond writes a line of the run summary for the operator
func (h *BaseHandler) respond(format string, args ...any) {
	if _, err := fmt.Fprintf(h.out, format+"\n", args...); err != nil {
		h.logger.Error("failed to write output", zap.Error(err))
	}
}
