package llm

import (
	"context"
	"time"

	"comida-a-casa/internal/shared"
)

// Recorder receives the outcome of every generation call.
type Recorder interface {
	RecordGeneration(operation string, usage shared.TokenUsage, latency time.Duration, err error)
}

type instrumented struct {
	next     Generator
	recorder Recorder
}

// Instrument wraps gen so that each call is reported to recorder.
func Instrument(gen Generator, recorder Recorder) Generator {
	if recorder == nil {
		return gen
	}
	return &instrumented{next: gen, recorder: recorder}
}

func (i *instrumented) GenerateJSON(ctx context.Context, req Request) (ContentResponse, error) {
	start := time.Now()
	resp, err := i.next.GenerateJSON(ctx, req)
	i.recorder.RecordGeneration(req.Operation, resp.Usage, time.Since(start), err)
	return resp, err
}

// Recorders fans out one record to several recorders.
type Recorders []Recorder

func (rs Recorders) RecordGeneration(operation string, usage shared.TokenUsage, latency time.Duration, err error) {
	for _, r := range rs {
		r.RecordGeneration(operation, usage, latency, err)
	}
}
