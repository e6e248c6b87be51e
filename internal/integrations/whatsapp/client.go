package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/config"
)

// Client talks to the WhatsApp Cloud API message-send endpoint.
type Client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.APIBaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendResult carries the provider-assigned message id and the raw response
// body, which is persisted as message metadata.
type SendResult struct {
	MessageID string
	Raw       json.RawMessage
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NormalizeNumber strips a leading "+" and all whitespace from a counterparty
// identifier before it is used as a recipient or a lookup key.
func NormalizeNumber(number string) string {
	n := strings.TrimPrefix(strings.TrimSpace(number), "+")
	return strings.Join(strings.Fields(n), "")
}

// SendText posts a text message to the Cloud API. It fails fast with a
// ConfigError when credentials are absent and never retries; the caller owns
// retry policy.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResult, error) {
	if c.accessToken == "" {
		return nil, &apperr.ConfigError{Key: "WHATSAPP_ACCESS_TOKEN"}
	}
	if c.phoneNumberID == "" {
		return nil, &apperr.ConfigError{Key: "WHATSAPP_PHONE_NUMBER_ID"}
	}

	reqBody, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               NormalizeNumber(to),
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp send request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := providerDetail(raw)
		return nil, &apperr.ProviderError{StatusCode: resp.StatusCode, Detail: detail}
	}

	var sr sendResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, &apperr.ProviderError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("malformed response body: %v", err)}
	}

	result := &SendResult{Raw: raw}
	if len(sr.Messages) > 0 {
		result.MessageID = sr.Messages[0].ID
	}
	return result, nil
}

// providerDetail extracts the provider's own error message when the body is
// the documented error envelope, falling back to a body excerpt.
func providerDetail(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	excerpt := string(raw)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	return excerpt
}
