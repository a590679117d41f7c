package pixfx

import (
	"context"
	"fmt"
	"sort"
)

// operationRank fixes the rendering position of each built-in operation.
// Geometry first, then color, then spatial effects and decorations on
// top. Activation order never influences rendering order.
var operationRank = map[string]int{
	OpCropRotation: 0,
	OpFlip:         1,
	OpFilters:      2,
	OpContrast:     3,
	OpBrightness:   4,
	OpSaturation:   5,
	OpRadialBlur:   6,
	OpTiltShift:    7,
	OpFrames:       8,
	OpStickers:     9,
	OpText:         10,
}

// OperationOrder returns the built-in operation identifiers in the order
// they are applied during rendering.
func OperationOrder() []string {
	ids := make([]string, 0, len(operationRank))
	for id := range operationRank {
		ids = append(ids, id)
	}
	sortByRenderOrder(ids)
	return ids
}

// sortByRenderOrder sorts identifiers by their fixed rank. Identifiers
// outside the built-in set sort after all built-ins, alphabetically, so
// custom operations still render deterministically.
func sortByRenderOrder(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ri, iok := operationRank[ids[i]]
		rj, jok := operationRank[ids[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

// OperationsStack holds the active operations of an editing session and
// renders them in their fixed order. At most one operation per identifier
// is active at a time.
//
// The stack is not safe for concurrent use; Session serializes access.
type OperationsStack struct {
	registry *OperationRegistry
	ops      map[string]Operation
}

// NewOperationsStack returns an empty stack. A nil registry falls back to
// a fresh registry with the built-in operations.
func NewOperationsStack(reg *OperationRegistry) *OperationsStack {
	if reg == nil {
		reg = NewOperationRegistry()
	}
	return &OperationsStack{
		registry: reg,
		ops:      make(map[string]Operation),
	}
}

// Activate constructs the operation for the identifier and adds it to the
// stack, or returns the already active instance. An unknown identifier
// returns ErrUnknownOperation and leaves the stack unchanged.
func (s *OperationsStack) Activate(id string) (Operation, error) {
	if op, ok := s.ops[id]; ok {
		return op, nil
	}
	op, err := s.registry.New(id)
	if err != nil {
		return nil, err
	}
	s.ops[id] = op
	return op, nil
}

// Deactivate removes the operation from the stack. It reports whether the
// operation was active.
func (s *OperationsStack) Deactivate(id string) bool {
	if _, ok := s.ops[id]; !ok {
		return false
	}
	delete(s.ops, id)
	return true
}

// Get returns the active operation for the identifier, if any.
func (s *OperationsStack) Get(id string) (Operation, bool) {
	op, ok := s.ops[id]
	return op, ok
}

// Active returns the active operations in rendering order.
func (s *OperationsStack) Active() []Operation {
	ids := make([]string, 0, len(s.ops))
	for id := range s.ops {
		ids = append(ids, id)
	}
	sortByRenderOrder(ids)
	ops := make([]Operation, len(ids))
	for i, id := range ids {
		ops[i] = s.ops[id]
	}
	return ops
}

// Len returns the number of active operations.
func (s *OperationsStack) Len() int { return len(s.ops) }

// Snapshot returns detached copies of the active operations in rendering
// order. The copies share no mutable state with the stack, so they stay
// renderable on another goroutine while the live operations keep taking
// setter calls. Operations that cannot be copied are returned as-is.
func (s *OperationsStack) Snapshot() []Operation {
	ops := s.Active()
	for i, op := range ops {
		if f, ok := op.(freezer); ok {
			ops[i] = f.freeze()
		}
	}
	return ops
}

// Render applies the active operations to src in their fixed order and
// returns the result. src is never modified. Operations reporting
// IsIdentity are skipped, so a stack of identity operations is as cheap
// (and pixel-identical) as an empty one.
//
// The context is checked between operations; a canceled context aborts
// the render with ctx.Err().
func (s *OperationsStack) Render(ctx context.Context, r Renderer, src *Pixmap) (*Pixmap, error) {
	return applyOperations(ctx, r, src, s.Active())
}

// applyOperations runs ops over src in slice order. It is shared by the
// live stack render and the session's snapshot render, so both follow
// the same skipping, cancellation and error semantics.
func applyOperations(ctx context.Context, r Renderer, src *Pixmap, ops []Operation) (*Pixmap, error) {
	current := src
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if op.IsIdentity() {
			continue
		}
		next, err := op.Apply(r, current)
		if err != nil {
			return nil, fmt.Errorf("pixfx: operation %q: %w", op.Identifier(), err)
		}
		current = next
	}
	if current == src {
		// Nothing applied; hand back a copy so callers own the result.
		return src.Clone(), nil
	}
	return current, nil
}
