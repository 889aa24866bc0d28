package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Synthesizer is the vendor boundary. Implementations return raw audio bytes
// for the expanded text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, profile Profile) ([]byte, error)
}

// ClientConfig captures the runtime settings required to talk to the vendor.
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	VoiceID        string
	TimeoutSeconds int
}

// Client wraps the ElevenLabs-compatible text-to-speech API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a vendor client from the supplied configuration.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: ClientConfig{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			VoiceID:        strings.TrimSpace(cfg.VoiceID),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.elevenlabs.io"
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("speech request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type synthesisRequest struct {
	Text          string  `json:"text"`
	ModelID       string  `json:"model_id"`
	VoiceSettings Profile `json:"voice_settings"`
}

// Synthesize issues one text-to-speech request and returns the audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string, profile Profile) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech request: text required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("speech request: api key required")
	}

	payload := synthesisRequest{
		Text:          text,
		ModelID:       "eleven_multilingual_v2",
		VoiceSettings: profile,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("speech request: encode body: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v1/text-to-speech/" + c.cfg.VoiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("speech request: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, errors.New("speech request: empty audio response")
	}
	return body, nil
}
