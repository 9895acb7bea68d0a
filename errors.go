package makereal

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	// EmptySelection means generation was triggered with nothing selected.
	EmptySelection Kind = "empty_selection"
	// RasterizationError means the canvas engine could not flatten the
	// selected region into an image.
	RasterizationError Kind = "rasterization_error"
	// Unconfigured means the completion credential is missing; no network
	// call was attempted.
	Unconfigured Kind = "unconfigured"
	// NetworkFailure covers DNS, connection, and reset failures.
	NetworkFailure Kind = "network_failure"
	// Timeout means the call exceeded the hard duration bound.
	Timeout Kind = "timeout"
	// ServiceRejected means the completion endpoint returned a
	// non-success status.
	ServiceRejected Kind = "service_rejected"
	// ProtocolViolation means the endpoint returned a success status with
	// a body we could not interpret.
	ProtocolViolation Kind = "protocol_violation"
	// EmptyGeneration means the model's answer contained no usable
	// document text.
	EmptyGeneration Kind = "empty_generation"
	// RenderFailure means artifact markup could not be displayed; it is
	// handled locally by the render layer and never fails a run.
	RenderFailure Kind = "render_failure"
)

// PipelineError represents failures from any stage of the generation
// pipeline.
type PipelineError struct {
	Kind    Kind
	Message string
	Err     error
	// Status is set for the ServiceRejected kind.
	Status int
}

func (e *PipelineError) Error() string {
	switch e.Kind {
	case EmptySelection:
		return "nothing selected"
	case RasterizationError:
		return fmt.Sprintf("could not rasterize selection: %s", e.detail())
	case Unconfigured:
		return fmt.Sprintf("missing configuration: %s", e.Message)
	case NetworkFailure:
		return fmt.Sprintf("network failure: %s", e.detail())
	case Timeout:
		return "generation timed out"
	case ServiceRejected:
		return fmt.Sprintf("service rejected request: %s (status %d)", e.Message, e.Status)
	case ProtocolViolation:
		return fmt.Sprintf("unexpected service response: %s", e.detail())
	case EmptyGeneration:
		return "model returned no usable document"
	case RenderFailure:
		return fmt.Sprintf("render failure: %s", e.detail())
	default:
		return e.Message
	}
}

func (e *PipelineError) detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is / errors.As to work with wrapped errors.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Helper constructors

func NewEmptySelectionError() *PipelineError {
	return &PipelineError{Kind: EmptySelection}
}

func NewRasterizationError(err error) *PipelineError {
	return &PipelineError{Kind: RasterizationError, Err: err}
}

func NewUnconfiguredError(msg string) *PipelineError {
	return &PipelineError{Kind: Unconfigured, Message: msg}
}

func NewNetworkFailureError(err error) *PipelineError {
	return &PipelineError{Kind: NetworkFailure, Err: err}
}

func NewTimeoutError(err error) *PipelineError {
	return &PipelineError{Kind: Timeout, Err: err}
}

func NewServiceRejectedError(status int, msg string) *PipelineError {
	return &PipelineError{Kind: ServiceRejected, Message: msg, Status: status}
}

func NewProtocolViolationError(msg string, err error) *PipelineError {
	return &PipelineError{Kind: ProtocolViolation, Message: msg, Err: err}
}

func NewEmptyGenerationError() *PipelineError {
	return &PipelineError{Kind: EmptyGeneration}
}

func NewRenderFailureError(err error) *PipelineError {
	return &PipelineError{Kind: RenderFailure, Err: err}
}

// KindOf extracts the pipeline error kind from err, or the empty string
// when err is not a PipelineError.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
