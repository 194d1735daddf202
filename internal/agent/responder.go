// Package agent wraps the language model behind a small interface and
// guarantees the conversation always gets a reply.
package agent

import (
	"context"
	"fmt"
)

// Request is one generation turn.
type Request struct {
	System string
	Prompt string
	Crisis bool
}

// Responder produces a therapeutic reply for a request.
type Responder interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenerationError reports why the model could not produce a reply.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

const generalFallback = "I'm having trouble responding right now, but I want you to know that I'm here to listen. " +
	"If you're in crisis, please reach out for immediate help: call or text 988 (Suicide and Crisis Lifeline), " +
	"text HOME to 741741 (Crisis Text Line), or call 911 in an emergency. " +
	"Could you tell me more about what's on your mind?"

const crisisFallback = "I'm very concerned about what you've shared. Your safety is the most important thing right now. " +
	"Please contact emergency help immediately: call or text 988 (Suicide and Crisis Lifeline), " +
	"text HOME to 741741 (Crisis Text Line), or call 911. " +
	"You don't have to face this alone. Is there someone who can stay with you right now?"

// SafeGenerate never fails: when the responder errors, it returns a
// deterministic fallback so the conversation cannot go silent. Crisis
// turns get the safety-focused fallback.
func SafeGenerate(ctx context.Context, r Responder, req Request) string {
	reply, err := r.Generate(ctx, req)
	if err != nil || reply == "" {
		if req.Crisis {
			return crisisFallback
		}
		return generalFallback
	}
	return reply
}
