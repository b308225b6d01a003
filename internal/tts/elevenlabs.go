// Package tts turns record text into narrated audio through the ElevenLabs API.
package tts

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

	"github.com/bewize/audio-generator/internal/middleware"
	"github.com/bewize/audio-generator/internal/models"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single synthesis call
const DefaultTimeout = 60 * time.Second

const maxErrorBody = 4 << 10

var (
	// ErrEmptyAudio is returned when the API answers 200 without audio
	ErrEmptyAudio = errors.New("no audio data received from text-to-speech API")
	// ErrSynthesisCancelled is returned when the call times out or its context is cancelled
	ErrSynthesisCancelled = errors.New("text-to-speech request cancelled")
)

// APIError is a non-200 answer from the text-to-speech API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("text-to-speech API returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAPIError reports whether err was caused by the API answering with an error
// status or by the call being cancelled. Such errors are surfaced to the caller
// as-is and are never retried.
func IsAPIError(err error) bool {
	return StatusCode(err) != 0 || errors.Is(err, ErrSynthesisCancelled)
}

type synthesisRequest struct {
	Text          string               `json:"text"`
	ModelID       string               `json:"model_id"`
	VoiceSettings models.VoiceSettings `json:"voice_settings"`
}

// ElevenLabsClient calls POST <base>/<voice_id> and returns mp3 audio
type ElevenLabsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewElevenLabsClient creates a new text-to-speech client.
// A zero timeout falls back to DefaultTimeout.
func NewElevenLabsClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *ElevenLabsClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := middleware.Chain(http.DefaultTransport,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.ResponseSizeLimit,
	)
	return &ElevenLabsClient{
		httpClient: &http.Client{Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		logger:     logger,
	}
}

// Synthesize converts params.Text to speech with params.VoiceID.
//
// Error statuses are returned as *APIError, timeouts and cancellations wrap
// ErrSynthesisCancelled, and an empty body returns ErrEmptyAudio.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, params models.SynthesisParameters) (models.AudioArtifact, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:          params.Text,
		ModelID:       params.ModelID,
		VoiceSettings: params.VoiceSettings,
	})
	if err != nil {
		return models.AudioArtifact{}, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+params.VoiceID, bytes.NewReader(body))
	if err != nil {
		return models.AudioArtifact{}, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", models.AudioContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Error("text-to-speech request was cancelled", zap.String("voice_id", params.VoiceID), zap.Error(err))
			return models.AudioArtifact{}, fmt.Errorf("%w: %w", ErrSynthesisCancelled, ctx.Err())
		}
		return models.AudioArtifact{}, fmt.Errorf("failed to call text-to-speech API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(errBody)}
		c.logStatus(apiErr)
		return models.AudioArtifact{}, apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return models.AudioArtifact{}, fmt.Errorf("%w: %w", ErrSynthesisCancelled, ctx.Err())
		}
		return models.AudioArtifact{}, fmt.Errorf("failed to read synthesized audio: %w", err)
	}
	if len(data) == 0 {
		return models.AudioArtifact{}, ErrEmptyAudio
	}

	c.logger.Debug("received synthesized audio", zap.String("voice_id", params.VoiceID), zap.Int("bytes", len(data)))

	return models.AudioArtifact{Data: data, ContentType: models.AudioContentType}, nil
}

func (c *ElevenLabsClient) logStatus(apiErr *APIError) {
	var msg string
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		msg = "unauthorized: check ELEVENLABS_API_KEY"
	case http.StatusNotFound:
		msg = "not found: invalid voice or endpoint"
	case http.StatusTooManyRequests:
		msg = "too many requests: rate limit exceeded"
	case http.StatusInternalServerError:
		msg = "text-to-speech server error"
	default:
		msg = "unexpected text-to-speech status"
	}
	c.logger.Error(msg, zap.Int("status", apiErr.StatusCode), zap.String("body", apiErr.Body))
}
