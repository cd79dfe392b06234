package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/models"
)

// DefaultBaseURL is the Volcano Ark OpenAI-compatible endpoint the original
// deployment targets.
const DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// Config holds the credentials and profile text consumed by the vision
// client. All values come from settings storage.
type Config struct {
	APIKey      string
	EndpointID  string // model/endpoint identifier
	BaseURL     string
	UserProfile string
}

// Client performs the single request/response exchange with the remote
// vision model. No retry, no application-level timeout beyond the HTTP
// client's; a non-2xx status is a hard failure.
type Client struct {
	config     Config
	httpClient *http.Client
	decoder    *Decoder
}

// NewClient creates a vision client. decoder may be nil for default
// risk-trigger behavior without an alert side-channel.
func NewClient(config Config, decoder *Decoder) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserProfile == "" {
		config.UserProfile = DefaultUserProfile
	}
	if decoder == nil {
		decoder = NewDecoder(nil)
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		decoder: decoder,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeImage sends one compressed JPEG to the vision model and ingests
// the response into a validated AnalysisResult.
func (c *Client) AnalyzeImage(ctx context.Context, imageJPEG []byte) (*models.AnalysisResult, error) {
	if c.config.APIKey == "" || c.config.EndpointID == "" {
		return nil, apperrors.New(apperrors.ErrNotConfigured, "API key and endpoint are not configured")
	}

	encoded := base64.StdEncoding.EncodeToString(imageJPEG)
	reqBody := chatRequest{
		Model: c.config.EndpointID,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userInstruction(c.config.UserProfile)},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded}},
			}},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to encode analysis request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to build analysis request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "vision API request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.New(apperrors.ErrTransport,
			fmt.Sprintf("vision API returned %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrParse, "vision API response is not valid JSON", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, apperrors.New(apperrors.ErrParse, "vision API response contains no choices")
	}

	return c.decoder.Decode(chatResp.Choices[0].Message.Content)
}
