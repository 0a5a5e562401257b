package observer

import (
	"context"
	"io"
	"log"

	"github.com/voocel/aegis/schema"
)

// LoggerObserver provides basic log output.
type LoggerObserver struct {
	logger *log.Logger
}

// NewLoggerObserver creates a LoggerObserver.
func NewLoggerObserver(out io.Writer) *LoggerObserver {
	if out == nil {
		out = io.Discard
	}
	return &LoggerObserver{
		logger: log.New(out, "aegis ", log.LstdFlags|log.Lmicroseconds),
	}
}

func (o *LoggerObserver) OnRequest(_ context.Context, req *schema.Request) {
	o.logger.Printf(
		"request id=%s text_len=%d image=%t",
		req.ID,
		len(req.Text),
		req.ImageURL != "",
	)
}

func (o *LoggerObserver) OnVerdict(_ context.Context, requestID string, stage schema.Stage, verdict schema.Verdict) {
	if verdict.Allowed {
		o.logger.Printf("verdict allowed stage=%s id=%s", stage, requestID)
		return
	}
	o.logger.Printf(
		"verdict blocked stage=%s id=%s category=%s reason=%q",
		stage,
		requestID,
		verdict.Category,
		verdict.Reason,
	)
}

func (o *LoggerObserver) OnRoute(_ context.Context, requestID, handlerName string) {
	o.logger.Printf("route id=%s handler=%s", requestID, handlerName)
}

func (o *LoggerObserver) OnToolResult(_ context.Context, requestID, tool string, err error) {
	if err != nil {
		o.logger.Printf("tool result id=%s tool=%s err=%v", requestID, tool, err)
		return
	}
	o.logger.Printf("tool result id=%s tool=%s ok", requestID, tool)
}

func (o *LoggerObserver) OnError(_ context.Context, requestID string, err error) {
	if err == nil {
		return
	}
	o.logger.Printf("error id=%s %v", requestID, err)
}

var _ Observer = (*LoggerObserver)(nil)
