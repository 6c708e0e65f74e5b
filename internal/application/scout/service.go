package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cryptoscout/internal/application"
	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/domain/projects"
)

const analysisBatchLimit = 50

// Analyzer is the consensus engine seen from the orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, p projects.Project) (analysis.ConsensusResult, error)
}

// Notifier pushes an alert for a finished analysis. Implementations decide
// formatting and channel.
type Notifier interface {
	AlertAnalysis(ctx context.Context, p projects.Project, res analysis.ConsensusResult) error
}

// Service implements the scan and analyze cycles: discover new projects,
// run each through the consensus engine, persist, and alert.
type Service struct {
	Projects projects.Repository
	Analyses analysis.Repository
	Analyzer Analyzer
	Sources  []projects.Source
	Notifier Notifier // optional
	Clock    application.Clock

	// AlertThreshold is the minimum final score that triggers an alert on
	// its own; STRONG_BUY and SCAM verdicts always alert.
	AlertThreshold float64
}

// RunScan polls every source in parallel and stores newly discovered
// projects. A failing source is logged and skipped; it must not starve the
// others. Returns the number of projects inserted.
func (s *Service) RunScan(ctx context.Context) (int, error) {
	var (
		g, gctx = errgroup.WithContext(ctx)
		batches = make([][]projects.Project, len(s.Sources))
	)
	for i, src := range s.Sources {
		i, src := i, src
		g.Go(func() error {
			found, err := src.Discover(gctx)
			if err != nil {
				log.Printf("[WARN] source %s: %v", src.Name(), err)
				return nil
			}
			log.Printf("[INFO] source %s: %d projects", src.Name(), len(found))
			batches[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var all []projects.Project
	for _, b := range batches {
		all = append(all, b...)
	}
	if len(all) == 0 {
		return 0, nil
	}
	inserted, err := s.Projects.SaveBatch(ctx, all)
	if err != nil {
		return 0, fmt.Errorf("save projects: %w", err)
	}
	return inserted, nil
}

// RunAnalysis picks up unanalyzed projects and runs the consensus engine on
// each. Per-project failures are logged and skipped so one bad record cannot
// stall the batch.
func (s *Service) RunAnalysis(ctx context.Context) error {
	pending, err := s.Projects.Unanalyzed(ctx, analysisBatchLimit)
	if err != nil {
		return fmt.Errorf("load unanalyzed: %w", err)
	}
	for _, p := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.AnalyzeOne(ctx, p); err != nil {
			log.Printf("[ERROR] analyze %s: %v", p.ID, err)
		}
	}
	return nil
}

// AnalyzeOne runs the full pipeline for a single project and returns the
// consensus result.
func (s *Service) AnalyzeOne(ctx context.Context, p projects.Project) (analysis.ConsensusResult, error) {
	res, err := s.Analyzer.Analyze(ctx, p)
	if err != nil {
		return analysis.ConsensusResult{}, err
	}
	log.Printf("[INFO] analyzed %s: score=%.1f verdict=%s models=%d",
		p.ID, res.FinalScore, res.FinalVerdict, res.ModelsUsed)

	payload, err := json.Marshal(res)
	if err != nil {
		return analysis.ConsensusResult{}, fmt.Errorf("marshal result: %w", err)
	}
	rec := &analysis.Record{
		ID:         analysis.RecordID(uuid.New().String()),
		ProjectID:  p.ID,
		ResultJSON: string(payload),
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Analyses.Save(ctx, rec); err != nil {
		return analysis.ConsensusResult{}, fmt.Errorf("save analysis: %w", err)
	}
	if err := s.Projects.MarkAnalyzed(ctx, p.ID, res.FinalScore, string(res.FinalVerdict)); err != nil {
		return analysis.ConsensusResult{}, fmt.Errorf("mark analyzed: %w", err)
	}

	if s.shouldAlert(res) && s.Notifier != nil {
		if err := s.Notifier.AlertAnalysis(ctx, p, res); err != nil {
			log.Printf("[WARN] alert for %s: %v", p.ID, err)
		}
	}
	return res, nil
}

// RunCycle is scan followed by analysis, the normal scheduled unit of work.
func (s *Service) RunCycle(ctx context.Context) error {
	start := time.Now()
	inserted, err := s.RunScan(ctx)
	if err != nil {
		return err
	}
	log.Printf("[INFO] scan done: %d new projects", inserted)
	if err := s.RunAnalysis(ctx); err != nil {
		return err
	}
	log.Printf("[INFO] cycle done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Service) shouldAlert(res analysis.ConsensusResult) bool {
	threshold := s.AlertThreshold
	if threshold <= 0 {
		threshold = 8.0
	}
	if res.FinalScore >= threshold {
		return true
	}
	switch res.FinalVerdict {
	case analysis.VerdictStrongBuy, analysis.VerdictScam:
		return true
	}
	return false
}
