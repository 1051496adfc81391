package taxonomy

import "github.com/google/uuid"

// StepKind is one counter operation.
type StepKind string

const (
	StepRecompute StepKind = "recompute"
	StepIncrement StepKind = "increment"
	StepDecrement StepKind = "decrement"
)

// Step targets a single node. Old marks steps that touch the placement a
// product is leaving; those tolerate nodes that have since gone missing.
type Step struct {
	Kind StepKind
	Node uuid.UUID
	Old  bool
}

// PlanCreate lists the counter steps for a product inserted at p.
func PlanCreate(p Placement) []Step {
	return enter(p)
}

// PlanDelete lists the counter steps for a product removed from p.
func PlanDelete(p Placement) []Step {
	return leave(p)
}

// PlanMove lists the counter steps for a product moving from old to next.
// Steps for the old node always precede steps for the new node, and moving to
// the same node is a no-op.
func PlanMove(old, next Placement) []Step {
	if next.IsZero() || old.SameNode(next) {
		return nil
	}
	return append(leave(old), enter(next)...)
}

func enter(p Placement) []Step {
	switch {
	case p.IsZero():
		return nil
	case p.IsSubcategory():
		return []Step{
			{Kind: StepIncrement, Node: p.ID()},
			{Kind: StepRecompute, Node: p.CategoryID()},
		}
	default:
		return []Step{{Kind: StepRecompute, Node: p.ID()}}
	}
}

func leave(p Placement) []Step {
	switch {
	case p.IsZero():
		return nil
	case p.IsSubcategory():
		return []Step{
			{Kind: StepDecrement, Node: p.ID(), Old: true},
			{Kind: StepRecompute, Node: p.CategoryID(), Old: true},
		}
	default:
		return []Step{{Kind: StepRecompute, Node: p.ID(), Old: true}}
	}
}
