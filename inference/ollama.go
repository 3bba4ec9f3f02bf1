package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/types"
)

// OllamaConfig configures the local Ollama client.
type OllamaConfig struct {
	// BaseURL of the Ollama server.
	BaseURL string `yaml:"base_url"`
	// Model name, e.g. "llama3.2".
	Model string `yaml:"model"`
	// KeepAlive keeps the model weights resident between calls.
	KeepAlive string `yaml:"keep_alive"`
	// Timeout bounds a single generate call.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultOllamaConfig returns the default client configuration.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL:   "http://127.0.0.1:11434",
		Model:     "llama3.2",
		KeepAlive: "1h",
		Timeout:   2 * time.Minute,
	}
}

// OllamaClient talks to a local Ollama server over its generate API.
type OllamaClient struct {
	cfg    OllamaConfig
	client *http.Client
	logger *zap.Logger
}

// NewOllamaClient creates an OllamaClient.
func NewOllamaClient(cfg OllamaConfig, logger *zap.Logger) *OllamaClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOllamaConfig().Timeout
	}
	return &OllamaClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model     string `json:"model"`
	System    string `json:"system,omitempty"`
	Prompt    string `json:"prompt"`
	Stream    bool   `json:"stream"`
	KeepAlive string `json:"keep_alive,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate produces a reply. The context block, when present, is
// prepended to the user text inside the prompt body.
func (c *OllamaClient) Generate(ctx context.Context, system, contextBlock, prompt string) (string, error) {
	body := prompt
	if contextBlock != "" {
		body = contextBlock + "\n\n" + prompt
	}
	return c.generate(ctx, system, body)
}

// Warmup sends a blank prompt so the server pre-loads the model weights.
func (c *OllamaClient) Warmup(ctx context.Context) error {
	start := time.Now()
	if _, err := c.generate(ctx, "", ""); err != nil {
		return err
	}
	c.logger.Info("model weights pre-loaded",
		zap.String("model", c.cfg.Model),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (c *OllamaClient) generate(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:     c.cfg.Model,
		System:    system,
		Prompt:    prompt,
		Stream:    false,
		KeepAlive: c.cfg.KeepAlive,
	})
	if err != nil {
		return "", types.NewError(types.ErrInferenceFailed, "encode generate request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", types.NewError(types.ErrInferenceFailed, "build generate request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewError(types.ErrInferenceFailed, "call inference service").WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewError(types.ErrInferenceFailed, "read generate response").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", types.NewError(types.ErrInferenceFailed,
			fmt.Sprintf("inference service returned %d: %s", resp.StatusCode, truncate(string(data), 200)))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", types.NewError(types.ErrInferenceFailed, "decode generate response").WithCause(err)
	}
	if out.Error != "" {
		return "", types.NewError(types.ErrInferenceFailed, out.Error)
	}
	return out.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
