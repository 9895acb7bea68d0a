package makereal

import "context"

// CompletionClient performs the round trip to the hosted completion
// endpoint. Send returns the model's raw answer text; failures are
// *PipelineError values (Unconfigured, NetworkFailure, Timeout,
// ServiceRejected, ProtocolViolation). Implementations do not retry:
// silently replaying a nondeterministic generative call would hand the
// user a different result under the same trigger.
type CompletionClient interface {
	Send(ctx context.Context, req *GenerationRequest) (string, error)
}
