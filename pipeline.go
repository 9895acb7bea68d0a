package makereal

import (
	"context"
	"log/slog"

	"github.com/sketchwire/makereal/canvas"
	"github.com/sketchwire/makereal/internal/tracing"
)

// Pipeline wires the generation stages together: extract a snapshot of the
// current selection, build the request, send it, interpret the answer, and
// place the artifact. One Pipeline serves one canvas engine.
type Pipeline struct {
	eng      canvas.Engine
	client   CompletionClient
	placer   *Placer
	notifier Notifier
	logger   *slog.Logger
	request  RequestOptions
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// Request selects the completion model parameters.
	Request RequestOptions
	// Notifier receives user-visible failure notifications. Nil disables
	// notifications; failures are still logged.
	Notifier Notifier
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewPipeline creates a pipeline over the given canvas engine and
// completion client.
func NewPipeline(eng canvas.Engine, client CompletionClient, opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		eng:      eng,
		client:   client,
		placer:   NewPlacer(eng),
		notifier: opts.Notifier,
		logger:   logger,
		request:  opts.Request,
	}
}

// MakeReal runs one generation for the engine's current selection. All
// pipeline failures are reported through the notifier and returned; the
// host UI should treat the error as already handled.
func (p *Pipeline) MakeReal(ctx context.Context) error {
	return p.MakeRealSelection(ctx, p.eng.Selection())
}

// MakeRealSelection runs one generation for an explicit selection. The
// triggering action passes the selection in; the pipeline never reaches
// into ambient UI state.
func (p *Pipeline) MakeRealSelection(ctx context.Context, sel canvas.Selection) error {
	snap, err := ExtractSnapshot(ctx, p.eng, sel)
	if err != nil {
		p.report(err)
		return err
	}

	targetID := TargetFor(p.eng, sel)
	runCtx, token := p.placer.Begin(ctx, targetID, snap)
	req := BuildRequest(snap, p.request)

	info := tracing.RunInfo{
		TargetID:    string(targetID),
		Model:       req.Model,
		SourceCount: len(snap.SourceShapeIDs),
		PriorMarkup: snap.PriorMarkup != nil,
	}
	err = tracing.TraceRun(runCtx, info, func(ctx context.Context) error {
		raw, err := p.client.Send(ctx, req)
		if err != nil {
			return p.fail(targetID, token, err)
		}
		markup, err := InterpretResponse(raw)
		if err != nil {
			return p.fail(targetID, token, err)
		}
		if !p.placer.Complete(targetID, token, markup, snap) {
			p.logger.Debug("discarding superseded result", "target", targetID, "token", token)
			return nil
		}
		p.logger.Info("generation complete", "target", targetID, "bytes", len(markup))
		return nil
	})
	return err
}

// fail records a failed run. A superseded run's failure is dropped without
// reporting; its result no longer matters to the user.
func (p *Pipeline) fail(targetID canvas.ShapeID, token RunToken, cause error) error {
	if !p.placer.Fail(targetID, token, cause) {
		p.logger.Debug("discarding superseded failure", "target", targetID, "token", token, "error", cause)
		return nil
	}
	p.report(cause)
	return cause
}

// report converts a pipeline failure into one user-visible notification,
// with the full detail preserved in the log.
func (p *Pipeline) report(err error) {
	p.logger.Error("generation failed", "kind", KindOf(err), "error", err)
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(Notification{
		Title:       "Something went wrong",
		Description: truncateForDisplay(err.Error()),
	})
}
