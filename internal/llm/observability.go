package llm

import "go.uber.org/zap"

// RequestEvent carries the exact prompt sent to the completion service.
type RequestEvent struct {
	Model  string
	Prompt string
}

// CallEvent records metadata about a single completion call.
type CallEvent struct {
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
	Attempts  int
}

// Observer receives events about completion calls for logging and metrics.
type Observer interface {
	OnRequest(event RequestEvent)
	OnCallComplete(event CallEvent)
}

// LogObserver writes completion events to a zap logger.
type LogObserver struct {
	log *zap.SugaredLogger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *zap.SugaredLogger) *LogObserver {
	return &LogObserver{log: logger.Named("llm")}
}

func (o *LogObserver) OnRequest(event RequestEvent) {
	o.log.Infow("completion prompt",
		"model", event.Model,
		"prompt_chars", len(event.Prompt),
		"prompt", event.Prompt,
	)
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	if !event.Success {
		o.log.Warnw("completion call failed",
			"model", event.Model,
			"latency_ms", event.LatencyMs,
			"attempts", event.Attempts,
			"error_code", event.ErrorCode,
		)
		return
	}
	o.log.Infow("completion call",
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
	)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnRequest(RequestEvent)    {}
func (NoopObserver) OnCallComplete(CallEvent) {}
