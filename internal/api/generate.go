package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/seantiz/prism/internal/model"
	"github.com/seantiz/prism/internal/provider"
)

// generateRequest is the JSON body for POST /api/generate.
type generateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

// generateResponse is the normalized success shape. URL is null when the
// provider finished without producing an artifact.
type generateResponse struct {
	URL *string `json:"url"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	gen := &model.Generation{
		ID:          model.NewID(),
		Status:      model.StatusPending,
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		CreatedAt:   time.Now().UTC(),
	}
	s.journal(func(ctx context.Context) error {
		return s.store.CreateGeneration(ctx, gen)
	})

	start := time.Now()
	url, taskID, err := s.relay(r.Context(), req)
	duration := int(time.Since(start).Milliseconds())

	gen.TaskID = taskID
	gen.DurationMS = &duration
	if err != nil {
		gen.Status = model.StatusFailed
		gen.Error = err.Error()
	} else {
		gen.Status = model.StatusCompleted
		gen.URL = url
	}
	s.journal(func(ctx context.Context) error {
		return s.store.FinishGeneration(ctx, gen)
	})

	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}

	resp := generateResponse{}
	if url != "" {
		resp.URL = &url
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// relay runs the submit-then-poll sequence for one request. It returns the
// artifact URL (possibly empty), the provider task id when the provider
// answered asynchronously, and the first error encountered.
func (s *Server) relay(ctx context.Context, req generateRequest) (string, string, error) {
	sub, err := s.client.Submit(ctx, provider.GenerationRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return "", "", err
	}

	if sub.Result != nil {
		return sub.Result.URL, "", nil
	}

	url, err := s.client.Poll(ctx, *sub.Task)
	return url, sub.Task.TaskID, err
}

// writeGenerateError maps the provider error taxonomy onto HTTP responses.
// Every failure path yields a structured error body; nothing is dropped.
func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, provider.ErrMissingPrompt):
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	case errors.Is(err, provider.ErrMissingCredential):
		s.writeError(w, http.StatusInternalServerError, "image generation is not configured on this server")
		return
	}

	var quotaErr *provider.QuotaError
	if errors.As(err, &quotaErr) {
		s.writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:         quotaErr.Error(),
			QuotaExceeded: true,
		})
		return
	}

	s.logger.Error("generation failed", "error", err, "request_id", middleware.GetReqID(r.Context()))

	var (
		submitTimeout *provider.SubmitTimeoutError
		pollTimeout   *provider.PollTimeoutError
		taskFailed    *provider.TaskFailedError
		provErr       *provider.ProviderError
	)
	switch {
	case errors.As(err, &submitTimeout):
		s.writeError(w, http.StatusGatewayTimeout, submitTimeout.Error())
	case errors.As(err, &pollTimeout):
		s.writeError(w, http.StatusGatewayTimeout, pollTimeout.Error())
	case errors.As(err, &taskFailed):
		s.writeError(w, http.StatusBadGateway, taskFailed.Error())
	case errors.As(err, &provErr):
		s.writeError(w, http.StatusBadGateway, provErr.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "image generation failed")
	}
}

// journal applies a best-effort write to the generation journal. Failures
// are logged and never fail the relay path. A detached context is used so
// the terminal record survives client disconnects.
func (s *Server) journal(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		s.logger.Error("journal write", "error", err)
	}
}
