package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// WebhookGateway talks to the chat-platform bridge over HTTP. The bridge owns
// the platform session; this client only shuttles requests and surfaces
// failures for the caller's retry policy.
type WebhookGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewWebhookGateway constructs the client.
func NewWebhookGateway(baseURL, serviceToken string, timeout time.Duration) *WebhookGateway {
	return &WebhookGateway{
		baseURL: baseURL,
		token:   serviceToken,
		client:  &http.Client{Timeout: timeout},
	}
}

type createChannelRequest struct {
	TenantID   string      `json:"tenant_id"`
	Name       string      `json:"name"`
	CategoryID string      `json:"category_id,omitempty"`
	Overwrites []Overwrite `json:"overwrites,omitempty"`
}

type createChannelResponse struct {
	ChannelID string `json:"channel_id"`
}

// CreateChannel provisions a ticket channel and returns its platform ID.
func (g *WebhookGateway) CreateChannel(ctx context.Context, tenantID, name, categoryID string, overwrites []Overwrite) (string, error) {
	var resp createChannelResponse
	err := g.postJSON(ctx, "/channels", createChannelRequest{
		TenantID:   tenantID,
		Name:       name,
		CategoryID: categoryID,
		Overwrites: overwrites,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ChannelID == "" {
		return "", fmt.Errorf("gateway returned empty channel id")
	}
	return resp.ChannelID, nil
}

type setPermissionRequest struct {
	ActorID string `json:"actor_id"`
	View    bool   `json:"view"`
	Send    bool   `json:"send"`
}

// SetPermission applies a channel permission overwrite for one actor.
func (g *WebhookGateway) SetPermission(ctx context.Context, channelID, actorID string, view, send bool) error {
	path := fmt.Sprintf("/channels/%s/permissions", url.PathEscape(channelID))
	return g.postJSON(ctx, path, setPermissionRequest{ActorID: actorID, View: view, Send: send}, nil)
}

type historyResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

// FetchHistory returns the channel's messages oldest first.
func (g *WebhookGateway) FetchHistory(ctx context.Context, channelID string) ([]HistoryMessage, error) {
	path := fmt.Sprintf("/channels/%s/history", url.PathEscape(channelID))
	req, err := g.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := g.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage posts a text message to a channel.
func (g *WebhookGateway) SendMessage(ctx context.Context, channelID, content string) error {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	return g.postJSON(ctx, path, sendMessageRequest{Content: content}, nil)
}

// SendDocument uploads a file attachment to a channel.
func (g *WebhookGateway) SendDocument(ctx context.Context, channelID, filename string, content []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	path := fmt.Sprintf("/channels/%s/documents", url.PathEscape(channelID))
	req, err := g.newRequest(ctx, http.MethodPost, path, &body, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return g.do(req, nil)
}

// DeleteChannel removes the ticket channel.
func (g *WebhookGateway) DeleteChannel(ctx context.Context, channelID string) error {
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	req, err := g.newRequest(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	return g.do(req, nil)
}

func (g *WebhookGateway) postJSON(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := g.newRequest(ctx, http.MethodPost, path, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return err
	}
	return g.do(req, out)
}

func (g *WebhookGateway) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	return req, nil
}

func (g *WebhookGateway) do(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, snippet)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
