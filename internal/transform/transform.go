// Package transform defines the image-transformation collaborator invoked by
// the worker pool, and a local implementation of it.
package transform

import (
	"context"

	"stylizer/internal/domain"
)

// Artifact is the output of a transform: encoded image bytes plus MIME type.
type Artifact struct {
	Data []byte
	MIME string
}

// Transformer turns a job's source image and parameters into an artifact.
// Implementations may be slow; they must honor ctx cancellation so the pool
// can abandon a run that exceeds its deadline.
type Transformer interface {
	Transform(ctx context.Context, params domain.StylizeParams) (Artifact, error)
}

// Func adapts an ordinary function to the Transformer interface.
type Func func(ctx context.Context, params domain.StylizeParams) (Artifact, error)

func (f Func) Transform(ctx context.Context, params domain.StylizeParams) (Artifact, error) {
	return f(ctx, params)
}
