// Package server exposes the generation pipeline over HTTP: a thin proxy
// route that accepts a wireframe image and optional prior markup and
// returns the generated document. It exists so browser-side canvases can
// call the completion endpoint without shipping the credential to the
// client.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sketchwire/makereal"
)

// maxRequestDuration bounds request handling at the boundary, matching
// the completion client's own call deadline.
const maxRequestDuration = 60 * time.Second

// maxBodyBytes caps the inbound payload; a 2x-scale raster under the
// pixel budget stays well below this.
const maxBodyBytes = 32 << 20

// Server handles the toHtml route.
type Server struct {
	client  makereal.CompletionClient
	request makereal.RequestOptions
	logger  *slog.Logger
}

// Options configures a Server.
type Options struct {
	// Request selects the completion model parameters.
	Request makereal.RequestOptions
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New creates a Server around a completion client.
func New(client makereal.CompletionClient, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{client: client, request: opts.Request, logger: logger}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(maxRequestDuration))
	r.Post("/api/toHtml", s.handleToHTML)
	return r
}

type toHTMLRequest struct {
	// Image is the wireframe as a data URL.
	Image string `json:"image"`
	// HTML is the previous generation to revise, if any.
	HTML string `json:"html,omitempty"`
}

type toHTMLResponse struct {
	HTML string `json:"html"`
}

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleToHTML(w http.ResponseWriter, r *http.Request) {
	var body toHTMLRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, makereal.NewProtocolViolationError("invalid request body", err))
		return
	}
	if !strings.HasPrefix(body.Image, "data:") {
		s.writeError(w, http.StatusBadRequest, makereal.NewProtocolViolationError("image must be a data URL", nil))
		return
	}

	req := s.buildRequest(body)
	raw, err := s.client.Send(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	markup, err := makereal.InterpretResponse(raw)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(toHTMLResponse{HTML: markup})
}

func (s *Server) buildRequest(body toHTMLRequest) *makereal.GenerationRequest {
	model := s.request.Model
	if model == "" {
		model = makereal.DefaultModel
	}
	maxTokens := s.request.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = makereal.DefaultMaxOutputTokens
	}
	req := &makereal.GenerationRequest{
		SystemInstructions: makereal.SystemPrompt,
		ImageDataURL:       body.Image,
		TriggerText:        makereal.TriggerText,
		Model:              model,
		Temperature:        0,
		MaxOutputTokens:    maxTokens,
	}
	if body.HTML != "" {
		prior := makereal.RevisionFraming + "\n\n" + body.HTML
		req.PriorMarkup = &prior
	}
	return req
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("toHtml failed", "kind", makereal.KindOf(err), "error", err)
	var body errorBody
	body.Error.Kind = string(makereal.KindOf(err))
	body.Error.Message = err.Error()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps pipeline error kinds onto proxy response statuses.
func statusFor(err error) int {
	switch makereal.KindOf(err) {
	case makereal.Unconfigured:
		return http.StatusInternalServerError
	case makereal.Timeout:
		return http.StatusGatewayTimeout
	case makereal.ServiceRejected, makereal.NetworkFailure, makereal.ProtocolViolation, makereal.EmptyGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
