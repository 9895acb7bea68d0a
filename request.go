package makereal

import (
	"encoding/base64"
	"fmt"
)

// SystemPrompt is the fixed instruction set sent with every generation
// request. The wireframe image always comes from the canvas rasterizer, so
// the prompt can assume a low-fidelity sketch as input.
const SystemPrompt = `You are an expert front-end web developer.
A user will provide you with a low-fidelity wireframe of an application.
Your task is to return a single self-contained html file that uses tailwindcss to create a high-fidelity interface.
Treat any notes, arrows, or drawings in the wireframe as hints about UI structure or state.
If you need to use images, load them from a reliable source or use placeholders.
The file must be complete and ready to render in a browser as-is.`

// TriggerText is the user-turn instruction that accompanies the wireframe
// image.
const TriggerText = "Turn this into a single html file using tailwind."

// RevisionFraming introduces the prior markup when the user is refining an
// earlier generation.
const RevisionFraming = "Here is the current version of the html file. Revise it to match the wireframe."

// GenerationRequest is the structured multimodal request the completion
// client sends. Temperature is pinned to zero so the same snapshot drifts
// as little as possible between runs.
type GenerationRequest struct {
	SystemInstructions string
	// ImageDataURL inlines the raster image; the request crosses a network
	// boundary, so a filesystem path would be meaningless on the far side.
	ImageDataURL string
	TriggerText  string
	PriorMarkup  *string

	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// RequestOptions selects the completion model parameters.
type RequestOptions struct {
	// Model is the completion model id. Empty selects DefaultModel.
	Model string
	// MaxOutputTokens caps the generated document length. Zero selects
	// DefaultMaxOutputTokens.
	MaxOutputTokens int
}

const (
	DefaultModel           = "gpt-4o"
	DefaultMaxOutputTokens = 4096
)

// BuildRequest assembles the generation request from a snapshot. It is
// pure: equal snapshots and options produce equal requests.
func BuildRequest(snap *Snapshot, opts RequestOptions) *GenerationRequest {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	req := &GenerationRequest{
		SystemInstructions: SystemPrompt,
		ImageDataURL:       dataURL("image/png", snap.Image.PNG),
		TriggerText:        TriggerText,
		Model:              model,
		Temperature:        0,
		MaxOutputTokens:    maxTokens,
	}
	if snap.PriorMarkup != nil {
		prior := fmt.Sprintf("%s\n\n%s", RevisionFraming, *snap.PriorMarkup)
		req.PriorMarkup = &prior
	}
	return req
}

func dataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
