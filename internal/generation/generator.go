// Package generation defines the boundary between the application core and
// external text-generation backends.
package generation

import "context"

// Message is one turn in the model context, in wire form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces an assistant reply for a user message given the prior
// conversation turns. Implementations make a single blocking call to an
// external backend; callers are expected to run them off the request path.
type Generator interface {
	// GenerateReply sends the conversation history (oldest first) followed by
	// the new message to the backend and returns the generated text verbatim.
	// An empty reply with a successful response is not an error.
	//
	// Failures surface as ErrModelUnavailable (wrapped with the backend status
	// or transport cause). No retries are performed.
	GenerateReply(ctx context.Context, message Message, history []Message) (string, error)
}

// HealthChecker reports backend liveness for external health reporting.
// It is never consulted on the task path.
type HealthChecker interface {
	// Ping probes a lightweight endpoint of the backend. All errors are
	// swallowed and reported as false.
	Ping(ctx context.Context) bool
}
