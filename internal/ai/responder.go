package ai

import "context"

// Turn is one role-tagged utterance supplied as generative context.
type Turn struct {
	Role    string
	Content string
}

// Responder generates a completion from an ordered conversation window. It
// is network-bound and fallible; implementations must honor the context
// deadline and report failures as ErrGenerationUnavailable.
type Responder interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}
