// Package scan walks a case object tree and dispatches every entity to a
// visitor.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tendant/simple-case/pkg/simplecase"
)

// Walker traverses content trees depth-first.
type Walker struct {
	logger *slog.Logger
}

// New creates a new Walker. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger}
}

// WalkOptions configures the walk.
type WalkOptions struct {
	// Visitor receives every entity (required unless DryRun is true)
	Visitor simplecase.ContentVisitor

	// MaxDepth stops descending below this depth; the root is depth 0.
	// Zero means unlimited.
	MaxDepth int

	// DryRun if true, only logs the entities that would be visited
	DryRun bool

	// OnProgress is called every ProgressEvery entities (optional)
	OnProgress func(visited, failed int64)

	// ProgressEvery controls how often OnProgress fires (default: 100)
	ProgressEvery int
}

// WalkResult contains statistics about the walk.
type WalkResult struct {
	// TotalVisited is the number of entities dispatched without error
	TotalVisited int64

	// TotalFailed is the number of entities whose visit or child
	// resolution failed
	TotalFailed int64

	// FailedIDs contains the IDs of failed entities in walk order
	FailedIDs []simplecase.ObjectID

	// DeepestLevel is the greatest depth reached
	DeepestLevel int
}

type frame struct {
	content simplecase.Content
	depth   int
}

// Walk visits root and its descendants in pre-order, children in store
// order. A failing entity is recorded and the walk continues with the
// rest of the tree. Only context cancellation stops the walk early; the
// partial result is returned with the context error.
func (w *Walker) Walk(ctx context.Context, root simplecase.Content, opts WalkOptions) (*WalkResult, error) {
	result := &WalkResult{}

	if !opts.DryRun && opts.Visitor == nil {
		return result, fmt.Errorf("visitor is required when DryRun is false")
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100
	}

	seen := make(map[simplecase.ObjectID]struct{})
	stack := []frame{{content: root}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := top.content

		if _, ok := seen[c.ID()]; ok {
			w.logger.Warn("object reached twice, skipping", "object_id", int64(c.ID()))
			continue
		}
		seen[c.ID()] = struct{}{}
		result.DeepestLevel = max(result.DeepestLevel, top.depth)

		failed := false
		if opts.DryRun {
			w.logger.Info("dry run: would visit", "object_id", int64(c.ID()), "name", c.Name(), "depth", top.depth)
		} else if err := c.AcceptContent(opts.Visitor); err != nil {
			failed = true
			w.logger.Error("failed to visit object", "object_id", int64(c.ID()), "error", err)
		}

		if opts.MaxDepth == 0 || top.depth < opts.MaxDepth {
			children, err := c.Children(ctx)
			if err != nil {
				failed = true
				w.logger.Error("failed to resolve children", "object_id", int64(c.ID()), "error", err)
			}
			for _, child := range slices.Backward(children) {
				stack = append(stack, frame{content: child, depth: top.depth + 1})
			}
		}

		if failed {
			result.TotalFailed++
			result.FailedIDs = append(result.FailedIDs, c.ID())
		} else {
			result.TotalVisited++
		}

		if opts.OnProgress != nil && (result.TotalVisited+result.TotalFailed)%int64(opts.ProgressEvery) == 0 {
			opts.OnProgress(result.TotalVisited, result.TotalFailed)
		}
	}

	if opts.OnProgress != nil {
		opts.OnProgress(result.TotalVisited, result.TotalFailed)
	}
	return result, nil
}

// ForEach is a convenience method that walks the tree with a callback.
//
// Example:
//
//	walker.ForEach(ctx, image, func(ctx context.Context, c simplecase.Content) error {
//	    fmt.Println(c.Name())
//	    return nil
//	})
func (w *Walker) ForEach(ctx context.Context, root simplecase.Content, fn func(context.Context, simplecase.Content) error) (*WalkResult, error) {
	return w.Walk(ctx, root, WalkOptions{
		Visitor: simplecase.ContentFunc(func(c simplecase.Content) error {
			return fn(ctx, c)
		}),
	})
}
