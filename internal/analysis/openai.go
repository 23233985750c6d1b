package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoAPIKey is returned when the client is used without a credential.
var ErrNoAPIKey = errors.New("analysis service API key is not configured")

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o"
	DefaultAdviceModel = "gpt-4o-mini"
)

const extractionPrompt = `You are an expert in analysing self-storage architectural plans. You read floor plans and extract construction data.

Return a JSON object with the following fields (use null when a value cannot be determined):
{
    "whiteWallArea": <m² of front/white walls>,
    "grayWallArea": <m² of partition/gray walls>,
    "meshArea": <m² of security mesh>,
    "kickPlateLength": <running meters of kick plate>,
    "singleDoors": <number of single doors ~1 m>,
    "doubleDoors": <number of double doors ~2 m>,
    "rollerDoors": <number of roller doors>,
    "totalBoxes": <total number of boxes>,
    "smallBoxes": <number of small boxes 1-3 m²>,
    "mediumBoxes": <number of medium boxes 4-7 m²>,
    "largeBoxes": <number of large boxes 8+ m²>,
    "netArea": <net box area in m²>,
    "corridorArea": <corridor area in m²>,
    "grossArea": <gross area in m²>,
    "hallDimensions": {"length": <length>, "width": <width>},
    "confidence": <0-100 confidence of the analysis>,
    "notes": "<additional notes about the plan>"
}

Count the elements visible on the plan precisely. When unsure, give an estimate with a lower confidence.`

const advisorPrompt = "You are a self-storage industry expert with 15 years of experience. You review projects to maximise ROI."

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	AdviceModel string
	Timeout     time.Duration
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
// It implements both Analyzer and Advisor.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	adviceModel string
	timeout     time.Duration
	http        *http.Client
	log         zerolog.Logger
}

// NewOpenAIClient creates a client. Empty fields fall back to the defaults.
func NewOpenAIClient(cfg OpenAIConfig, log zerolog.Logger) *OpenAIClient {
	c := &OpenAIClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		adviceModel: cfg.AdviceModel,
		timeout:     cfg.Timeout,
		http:        &http.Client{},
		log:         log.With().Str("component", "analysis").Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.adviceModel == "" {
		c.adviceModel = DefaultAdviceModel
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeFloorPlan sends the images to the vision model and decodes its answer.
func (c *OpenAIClient) AnalyzeFloorPlan(ctx context.Context, images []Image) (Extraction, error) {
	if len(images) == 0 {
		return Extraction{}, errors.New("no images to analyse")
	}

	parts := []contentPart{{
		Type: "text",
		Text: "Analyse this self-storage plan and extract all construction data. Count walls, doors and boxes.",
	}}
	for _, img := range images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: dataURL(img), Detail: "high"},
		})
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: parts},
		},
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		return Extraction{}, err
	}
	return DecodeExtraction(content)
}

// Advise asks the text model for a review of the project.
func (c *OpenAIClient) Advise(ctx context.Context, s Summary) (string, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.adviceModel,
		Messages: []chatMessage{
			{Role: "system", Content: advisorPrompt},
			{Role: "user", Content: s.Prompt()},
		},
		MaxTokens:   800,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *OpenAIClient) complete(ctx context.Context, req chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", req.Model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	c.log.Debug().
		Str("model", req.Model).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("chat completion")

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("analysis service returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func dataURL(img Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
