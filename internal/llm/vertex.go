package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// VertexClient implements LLMClient and Embedder on Vertex AI (Gemini).
type VertexClient struct {
	cfg      LLMConfig
	client   *genai.Client
	limiter  *rate.Limiter
	observer Observer
}

// NewVertexClient creates a Gemini client on the Vertex AI backend.
// The GCP project and location must be set in cfg.
func NewVertexClient(ctx context.Context, cfg LLMConfig, observer Observer) (*VertexClient, error) {
	if cfg.GCPProject == "" || cfg.GCPLocation == "" {
		return nil, fmt.Errorf("TEMPO_GCP_PROJECT and TEMPO_GCP_LOCATION must be set")
	}
	if observer == nil {
		observer = NoopObserver{}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GCPProject,
		Location: cfg.GCPLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	return &VertexClient{cfg: cfg, client: client, limiter: limiter, observer: observer}, nil
}

func (v *VertexClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	taskCfg := v.cfg.Tasks[req.Task]
	temp := float32(taskCfg.Temperature)
	if req.Temperature != nil {
		temp = float32(*req.Temperature)
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	retries := v.cfg.MaxRetries
	if req.MaxRetries != nil {
		retries = *req.MaxRetries
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(v.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	gcfg, err := vertexContentConfig(req, temp, int32(maxTok))
	if err != nil {
		return nil, err
	}
	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}

	var text string
	err = v.withRetries(ctx, retries, func() error {
		res, err := v.client.Models.GenerateContent(ctx, v.cfg.Model, contents, gcfg)
		if err != nil {
			return fmt.Errorf("vertex generate content: %w", err)
		}
		text = res.Text()
		if text == "" {
			return errors.New("vertex returned empty text")
		}
		return nil
	})

	latency := time.Since(start).Milliseconds()
	v.observer.OnCallComplete(CallEvent{
		Task:      req.Task,
		Op:        "generate",
		Model:     v.cfg.Model,
		LatencyMs: latency,
		Inputs:    1,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	if err != nil {
		return nil, err
	}
	return &GenerateResponse{Text: text, Model: v.cfg.Model, LatencyMs: latency}, nil
}

// vertexContentConfig builds the request config. A Format schema is sent
// as the response JSON schema so output is constrained as on Ollama.
func vertexContentConfig(req GenerateRequest, temp float32, maxTokens int32) (*genai.GenerateContentConfig, error) {
	gcfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: maxTokens,
	}
	if req.SystemPrompt != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if len(req.Format) > 0 {
		var schema any
		if err := json.Unmarshal(req.Format, &schema); err != nil {
			return nil, fmt.Errorf("decoding response schema: %w", err)
		}
		gcfg.ResponseMIMEType = "application/json"
		gcfg.ResponseJsonSchema = schema
	}
	return gcfg, nil
}

func (v *VertexClient) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := v.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (v *VertexClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(v.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	var vecs [][]float64
	err := v.withRetries(ctx, v.cfg.MaxRetries, func() error {
		resp, err := v.client.Models.EmbedContent(ctx, v.cfg.EmbedModel, contents, nil)
		if err != nil {
			return fmt.Errorf("vertex embed content: %w", err)
		}
		vecs = make([][]float64, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			vec := make([]float64, len(e.Values))
			for j, x := range e.Values {
				vec[j] = float64(x)
			}
			vecs[i] = vec
		}
		return nil
	})
	if err == nil {
		err = checkEmbeddingShape(vecs, len(texts))
	}
	v.observer.OnCallComplete(CallEvent{
		Op:        "embed",
		Model:     v.cfg.EmbedModel,
		LatencyMs: time.Since(start).Milliseconds(),
		Inputs:    len(texts),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

// Available reports whether a client was constructed; Vertex has no cheap
// health endpoint.
func (v *VertexClient) Available(ctx context.Context) bool {
	return v.client != nil
}

func (v *VertexClient) withRetries(ctx context.Context, retries int, call func() error) error {
	var lastErr error
	for i := 0; i <= retries; i++ {
		if v.limiter != nil {
			if err := v.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}
		if lastErr = call(); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	if ctx.Err() != nil {
		return ErrTimeout
	}
	if isConnectionError(lastErr) {
		return ErrProviderUnavailable
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}
