package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome summarises what a plan changed.
type Outcome struct {
	Categories map[uuid.UUID]int64
	Clamped    []uuid.UUID
	Skipped    []uuid.UUID
}

// Engine applies counter plans inside a caller-owned transaction. It holds no
// database handle, only observability.
type Engine struct {
	logg    *logger.Logger
	metrics *metrics.TaxonomyMetrics
}

func NewEngine(logg *logger.Logger, m *metrics.TaxonomyMetrics) *Engine {
	return &Engine{logg: logg, metrics: m}
}

// Created adjusts counters after a product was inserted at p.
func (e *Engine) Created(ctx context.Context, tx *gorm.DB, p Placement) (Outcome, error) {
	return e.Apply(ctx, tx, "create", PlanCreate(p))
}

// Moved adjusts counters after a product's stored placement changed from old
// to next. The product row must already reflect next.
func (e *Engine) Moved(ctx context.Context, tx *gorm.DB, old, next Placement) (Outcome, error) {
	return e.Apply(ctx, tx, "move", PlanMove(old, next))
}

// Deleted adjusts counters after a product at p was deleted.
func (e *Engine) Deleted(ctx context.Context, tx *gorm.DB, p Placement) (Outcome, error) {
	return e.Apply(ctx, tx, "delete", PlanDelete(p))
}

// Apply runs steps in order. Any error should abort the enclosing transaction.
func (e *Engine) Apply(ctx context.Context, tx *gorm.DB, op string, steps []Step) (Outcome, error) {
	out := Outcome{Categories: map[uuid.UUID]int64{}}
	if len(steps) == 0 {
		return out, nil
	}

	started := time.Now()
	defer func() { e.metrics.ObservePlan(op, time.Since(started)) }()

	for _, step := range steps {
		err := e.applyStep(ctx, tx, step, &out)
		if err == nil {
			e.metrics.IncStep(string(step.Kind))
			continue
		}
		if step.Old && errors.Is(err, ErrNodeMissing) {
			out.Skipped = append(out.Skipped, step.Node)
			e.warn(ctx, "taxonomy.previous_node_missing", step)
			continue
		}
		e.metrics.IncFailure(op)
		return out, fmt.Errorf("taxonomy %s: %s %s: %w", op, step.Kind, step.Node, err)
	}
	return out, nil
}

func (e *Engine) applyStep(ctx context.Context, tx *gorm.DB, step Step, out *Outcome) error {
	switch step.Kind {
	case StepRecompute:
		total, err := RecomputeCategory(ctx, tx, step.Node)
		if err != nil {
			return err
		}
		out.Categories[step.Node] = total
		return nil
	case StepIncrement:
		return IncrementSubcategory(ctx, tx, step.Node)
	case StepDecrement:
		clamped, err := DecrementSubcategory(ctx, tx, step.Node)
		if err != nil {
			return err
		}
		if clamped {
			out.Clamped = append(out.Clamped, step.Node)
			e.metrics.IncUnderflow()
			e.warn(ctx, "taxonomy.counter_underflow", step)
		}
		return nil
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (e *Engine) warn(ctx context.Context, msg string, step Step) {
	if e.logg == nil {
		return
	}
	ctx = e.logg.WithFields(ctx, map[string]any{
		"step": string(step.Kind),
		"node": step.Node.String(),
	})
	e.logg.Warn(ctx, msg)
}
