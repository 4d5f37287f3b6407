package analyzer

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
)

// Orchestrator drives one analysis run: the parser stage sequentially, the
// risk and automation stages concurrently, then the deterministic merge.
// Persistence is best-effort through the optional store; metrics are recorded
// on every run including fatal failures.
type Orchestrator struct {
	runner  *stageRunner
	store   core.WorkflowStore
	logger  *logging.Logger
	tracer  *Tracer
	metrics *MetricsCollector

	summarizerEnabled bool
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithStore sets the workflow store used for best-effort persistence.
func WithStore(store core.WorkflowStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithSummarizer enables the optional summarizer stage after the parallel
// join.
func WithSummarizer(enabled bool) Option {
	return func(o *Orchestrator) {
		o.summarizerEnabled = enabled
	}
}

// WithStageTimeout caps each LLM call's duration.
func WithStageTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.runner.timeout = timeout
	}
}

// New creates an orchestrator backed by the given LLM client.
func New(llm core.LLMClient, logger *logging.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}

	o := &Orchestrator{
		runner:  &stageRunner{llm: llm, logger: logger},
		logger:  logger,
		tracer:  NewTracer(),
		metrics: NewMetricsCollector(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AnalyzeWorkflow runs the full pipeline over a workflow description.
//
// Fatal failures (empty input, parser producing zero steps) return an error.
// Stage-local failures in the parallel phase degrade to UNKNOWN sentinels in
// the report; the run still succeeds and the two outcomes stay
// distinguishable for the caller.
func (o *Orchestrator) AnalyzeWorkflow(ctx context.Context, workflowText string) (*core.WorkflowAnalysis, error) {
	session, err := NewSession()
	if err != nil {
		return nil, err
	}

	log := o.logger.WithTrace(session.TraceID).WithSession(session.SessionID)
	log.Info("starting workflow analysis", "workflow_length", len(workflowText))

	analysis, err := o.analyze(ctx, session, workflowText, log)

	// Metrics are recorded on every path, fatal failures included.
	o.metrics.RecordAnalysis(session)

	if err != nil {
		log.Error("workflow analysis failed", "error", err)
		session.RecordError(string(core.GetCategory(err)), err.Error(), "orchestrator")
		return nil, err
	}

	log.Info("analysis completed", "total_steps", len(analysis.Steps), "duration_ms", analysis.DurationMS)
	return analysis, nil
}

func (o *Orchestrator) analyze(ctx context.Context, session *Session, workflowText string, log *logging.Logger) (*core.WorkflowAnalysis, error) {
	if strings.TrimSpace(workflowText) == "" {
		return nil, core.ErrValidation(core.CodeEmptyWorkflow, "workflow text must be a non-empty string")
	}

	// Sequential gate: the parallel stages read the parser's session field,
	// so nothing is launched until it completes.
	finishParse := o.tracer.StartSpan(session.TraceID, "stage1_parse", StageParser)
	steps, _ := o.runner.runParser(ctx, session, workflowText)
	if len(steps) == 0 {
		finishParse("error")
		return nil, core.ErrExecution(core.CodeParseFailed, "parser produced no workflow steps")
	}
	finishParse("success")

	log.Info("parser completed", "steps_found", len(steps), "latency_ms", session.ParserLatency)

	// Fan out the risk and automation stages. Both write disjoint session
	// fields; the session logs serialize their own appends. Each stage
	// isolates its own failure, so the join always sees two results and
	// never cancels the sibling.
	session.ParallelStart = time.Now().UTC()

	g := &errgroup.Group{}
	g.Go(func() error {
		finish := o.tracer.StartSpan(session.TraceID, "stage2_risk", StageRisk)
		_, ok := o.runner.runRisk(ctx, session, workflowText)
		finish(spanStatus(ok))
		return nil
	})
	g.Go(func() error {
		finish := o.tracer.StartSpan(session.TraceID, "stage3_automation", StageAutomation)
		_, ok := o.runner.runAutomation(ctx, session, workflowText)
		finish(spanStatus(ok))
		return nil
	})
	_ = g.Wait() // stage goroutines never return errors

	session.ParallelEnd = time.Now().UTC()
	log.Info("parallel stages completed",
		"risk_assessments", len(session.RiskAssessments),
		"automation_analyses", len(session.AutomationAnalyses),
	)

	if o.summarizerEnabled {
		finish := o.tracer.StartSpan(session.TraceID, "stage4_summary", StageSummarizer)
		_, ok := o.runner.runSummarizer(ctx, session)
		finish(spanStatus(ok))
	}

	analysis := mergeResults(session)
	session.FinalAnalysis = analysis

	// Best-effort persistence: a failed save degrades to a warning and the
	// run still reports success.
	if o.store != nil {
		if err := o.store.Save(ctx, analysis.WorkflowID, workflowText, analysis); err != nil {
			log.Warn("failed to persist analysis", "workflow_id", analysis.WorkflowID, "error", err)
		} else {
			log.Info("analysis saved", "workflow_id", analysis.WorkflowID)
		}
	}

	return analysis, nil
}

// spanStatus maps a stage's clean/degraded outcome to a span status. A
// degraded stage still contributes an empty result to the merge, so its span
// gets a distinct status rather than the fatal "error".
func spanStatus(ok bool) string {
	if ok {
		return "success"
	}
	return "degraded"
}

// Metrics returns a snapshot of collected run metrics.
func (o *Orchestrator) Metrics() MetricsSnapshot {
	return o.metrics.Snapshot()
}

// Trace returns the spans recorded for a trace id.
func (o *Orchestrator) Trace(traceID string) []Span {
	return o.tracer.Trace(traceID)
}
