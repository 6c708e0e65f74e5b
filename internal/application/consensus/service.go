package consensus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cryptoscout/internal/application"
	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/domain/projects"
)

// ErrMissingProjectID is returned when the caller passes a project without
// an identifier. This is the only error Analyze can return: operational
// failures (backends down, malformed output) degrade the result instead.
var ErrMissingProjectID = errors.New("project id is required")

const defaultTimeout = 30 * time.Second

// PromptBuilder renders the scoring prompt for a project. The service
// treats the text as opaque and passes it to every backend unmodified.
type PromptBuilder interface {
	Build(p projects.Project) string
}

// Service runs one project through the backend council and reconciles the
// responses into a ConsensusResult.
type Service struct {
	Backends []analysis.Backend
	Prompt   PromptBuilder
	Timeout  time.Duration       // per backend call
	Archive  analysis.Archive    // optional, raw output audit trail
	Clock    application.Clock
}

// Analyze is the sole public entry point. It always returns a complete
// result for a well-formed project; with zero usable backends the result
// comes from the deterministic TVL fallback and ModelsUsed is 0.
func (s *Service) Analyze(ctx context.Context, project projects.Project) (analysis.ConsensusResult, error) {
	if strings.TrimSpace(project.ID) == "" {
		return analysis.ConsensusResult{}, ErrMissingProjectID
	}

	prompt := s.Prompt.Build(project)
	raw := s.invokeAll(ctx, prompt)
	s.archiveRaw(ctx, project.ID, raw)

	normalized := make([]analysis.NormalizedAnalysis, len(raw))
	for i, r := range raw {
		if r.Status == analysis.StatusOK {
			normalized[i] = analysis.Extract(r.Text)
		} else {
			normalized[i] = analysis.NormalizedAnalysis{Source: analysis.SourceNone}
		}
	}

	result, ok := aggregate(normalized)
	if !ok {
		result = fallbackResult(project)
	}
	result.ProjectID = project.ID
	result.ProjectName = project.Name
	result.AnalyzedAt = s.Clock.Now()

	return Enrich(result, project), nil
}

// invokeAll launches every backend concurrently and captures completions
// into pre-assigned slots, so downstream ordering always matches launch
// order no matter which backend finishes first.
func (s *Service) invokeAll(ctx context.Context, prompt string) []analysis.RawModelOutput {
	outs := make([]analysis.RawModelOutput, len(s.Backends))
	var wg sync.WaitGroup
	for i, b := range s.Backends {
		wg.Add(1)
		go func(i int, b analysis.Backend) {
			defer wg.Done()
			outs[i] = s.invoke(ctx, b, prompt)
		}(i, b)
	}
	wg.Wait()
	return outs
}

// invoke wraps a single backend call with a timeout and error containment.
// It never propagates a failure: every outcome becomes a RawModelOutput
// status. An overrunning call is abandoned, not awaited.
func (s *Service) invoke(ctx context.Context, b analysis.Backend, prompt string) analysis.RawModelOutput {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("%w: panic: %v", analysis.ErrBackendRejected, r)}
			}
		}()
		text, err := b.Generate(cctx, prompt)
		ch <- reply{text: text, err: err}
	}()

	start := time.Now()
	out := analysis.RawModelOutput{BackendID: b.ID()}
	select {
	case <-cctx.Done():
		out.Elapsed = time.Since(start)
		out.Status = analysis.StatusTimeout
		out.Error = cctx.Err().Error()
	case r := <-ch:
		out.Elapsed = time.Since(start)
		switch {
		case r.err == nil:
			out.Status = analysis.StatusOK
			out.Text = r.text
		case errors.Is(r.err, context.DeadlineExceeded), errors.Is(r.err, context.Canceled):
			out.Status = analysis.StatusTimeout
			out.Error = r.err.Error()
		case errors.Is(r.err, analysis.ErrBackendRejected):
			out.Status = analysis.StatusBackendError
			out.Error = r.err.Error()
		default:
			out.Status = analysis.StatusTransportError
			out.Error = r.err.Error()
		}
	}
	return out
}

// archiveRaw stores the council's raw output for auditing. Best effort.
func (s *Service) archiveRaw(ctx context.Context, projectID string, raw []analysis.RawModelOutput) {
	if s.Archive == nil {
		return
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return
	}
	key := fmt.Sprintf("%s/%d.json", projectID, s.Clock.Now().UnixMilli())
	if _, err := s.Archive.Put(ctx, key, payload); err != nil {
		log.Printf("[WARN] archive raw output for %s: %v", projectID, err)
	}
}
