package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIGateway sends email through an HTTP transactional-mail API
type APIGateway struct {
	apiURL string
	apiKey string
	sender string
	client *http.Client
}

// APIConfig holds configuration for the HTTP mail gateway
type APIConfig struct {
	APIURL string
	APIKey string
	Sender string // From address, e.g. no-reply@zugo.app
}

// NewAPIGateway creates a new HTTP mail gateway client
func NewAPIGateway(config APIConfig) *APIGateway {
	return &APIGateway{
		apiURL: config.APIURL,
		apiKey: config.APIKey,
		sender: config.Sender,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendRequest represents the mail API request structure
type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// sendResponse represents the mail API response structure
type sendResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send delivers a message via the HTTP API
func (g *APIGateway) Send(to, subject, body string) (string, error) {
	payload, err := json.Marshal(sendRequest{
		From:    g.sender,
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read mail API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse mail API response: %w", err)
	}

	if parsed.Status != "" && parsed.Status != "queued" && parsed.Status != "sent" {
		return "", fmt.Errorf("mail API rejected message: %s", parsed.Message)
	}

	return parsed.ID, nil
}

// GetName returns the gateway name
func (g *APIGateway) GetName() string {
	return "http-api"
}
