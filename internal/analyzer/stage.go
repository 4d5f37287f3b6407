package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
)

// stage describes one LLM-backed analysis pass. All stages share the same
// execution contract: build a prompt, invoke the model, strip fences, decode
// the named field, run the post-processing hook, store output and latency on
// the session. Failures never escape run; they degrade to an empty result and
// an entry in the session error log.
type stage[T any] struct {
	name         string
	systemPrompt string
	outputField  string
	buildPrompt  func(s *Session, workflowText string) string
	postProcess  func(s *Session, records []T) []T
	store        func(s *Session, records []T, latencyMS float64)
}

// stageRunner executes stages against the configured LLM client.
type stageRunner struct {
	llm     core.LLMClient
	logger  *logging.Logger
	timeout time.Duration // cap per LLM call; zero means no limit
}

// runStage executes a list-producing stage with the shared contract. The
// second return value reports whether the stage completed cleanly; a degraded
// stage (LLM failure, undecodable output) returns false alongside its empty
// result so callers can mark the outcome without re-reading the error log.
func runStage[T any](ctx context.Context, r *stageRunner, st stage[T], s *Session, workflowText string) ([]T, bool) {
	log := r.logger.WithTrace(s.TraceID).WithStage(st.name)
	log.Info("stage started", "workflow_length", len(workflowText))

	start := time.Now()
	finish := func(records []T) []T {
		latency := float64(time.Since(start)) / float64(time.Millisecond)
		st.store(s, records, latency)
		log.Info("stage completed", "records", len(records), "latency_ms", latency)
		return records
	}

	raw, err := r.llm.Generate(ctx, core.GenerateOptions{
		SystemPrompt: st.systemPrompt,
		UserPrompt:   st.buildPrompt(s, workflowText),
		JSONMode:     true,
		Timeout:      r.timeout,
	})
	if err != nil {
		log.Error("stage LLM call failed", "error", err)
		s.RecordError(core.CodeLLMFailed, err.Error(), st.name)
		return finish(nil), false
	}

	records, err := decodeStageField[[]T](raw, st.outputField)
	if err != nil {
		log.Error("stage output decode failed", "error", err)
		s.RecordError(core.CodeBadStageOutput, err.Error(), st.name)
		return finish(nil), false
	}

	if st.postProcess != nil {
		records = st.postProcess(s, records)
	}

	return finish(records), true
}

// decodeStageField strips markdown fences, decodes the response as a JSON
// object and extracts the named field. A missing field yields the zero value,
// not an error; any other top-level shape is a decode failure.
func decodeStageField[T any](raw, field string) (T, error) {
	var zero T

	cleaned := stripCodeFences(raw)
	if strings.TrimSpace(cleaned) == "" {
		return zero, fmt.Errorf("empty response")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return zero, fmt.Errorf("decoding response object: %w", err)
	}

	inner, ok := payload[field]
	if !ok {
		return zero, nil
	}

	var out T
	if err := json.Unmarshal(inner, &out); err != nil {
		return zero, fmt.Errorf("decoding field %q: %w", field, err)
	}
	return out, nil
}

// stripCodeFences removes a leading/trailing markdown code fence, with or
// without a "json" language tag. Models add these despite instructions.
func stripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}

	out = strings.TrimPrefix(out, "```")
	if idx := strings.Index(out, "```"); idx >= 0 {
		out = out[:idx]
	}
	out = strings.TrimPrefix(out, "json")
	return strings.TrimSpace(out)
}

// indentJSON renders records as pretty JSON for prompt embedding.
func indentJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
