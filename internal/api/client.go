package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "log/slog"
)

const (
	timeoutHealth  = 5 * time.Second
	timeoutCommand = 120 * time.Second // ALEX can take a while to respond
)

// Message is an autonomous message queued for the terminal.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Text  string `json:"text,omitempty"` // legacy key, some producers still send it
}

// Content returns the message body, falling back to the legacy text key.
func (m Message) Content() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Text
}

// HealthSnapshot mirrors the /api/health payload.
type HealthSnapshot struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	Memory        struct {
		RSSMB float64 `json:"rss_mb"`
	} `json:"memory"`
	Telegram string `json:"telegram"`
	Redis    string `json:"redis"`
}

// Client talks to the ALEX control API.
type Client struct {
	base  string
	token string

	short *http.Client // health checks and message polling
	long  *http.Client // command sends
}

func NewClient(base, token string) *Client {
	return &Client{
		base:  base,
		token: token,
		short: &http.Client{Timeout: timeoutHealth},
		long:  &http.Client{Timeout: timeoutCommand},
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Terminal", "true")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Health checks whether ALEX is online. Failures are swallowed, the caller
// only learns that no snapshot is available.
func (c *Client) Health(ctx context.Context) (*HealthSnapshot, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/health", nil)
	if err != nil {
		return nil, false
	}
	c.setHeaders(req)

	resp, err := c.short.Do(req)
	if err != nil {
		log.Debug("health check failed", "err", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var snap HealthSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// SendMessage sends a chat message via /api/command. Exactly one of the
// returned strings is non-empty: the assistant response or a human-readable
// error.
func (c *Client) SendMessage(ctx context.Context, text string) (string, string) {
	payload, err := json.Marshal(map[string]any{
		"message":          text,
		"send_to_telegram": false,
	})
	if err != nil {
		return "", err.Error()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/command", bytes.NewReader(payload))
	if err != nil {
		return "", err.Error()
	}
	c.setHeaders(req)

	resp, err := c.long.Do(req)
	if err != nil {
		return "", sendErrorString(err)
	}
	defer resp.Body.Close()

	var body struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusOK && body.Success {
		return body.Response, ""
	}
	if body.Error != "" {
		return "", body.Error
	}
	return "", fmt.Sprintf("HTTP %d", resp.StatusCode)
}

// sendErrorString folds transport failures into the user-facing taxonomy:
// timeouts, refused connections, and everything else.
func sendErrorString(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timed out"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "Cannot connect to ALEX"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	return err.Error()
}

// TerminalMessages fetches queued autonomous messages. Any failure yields an
// empty list; polling must never surface errors.
func (c *Client) TerminalMessages(ctx context.Context) []Message {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/terminal-messages", nil)
	if err != nil {
		return nil
	}
	c.setHeaders(req)

	resp, err := c.short.Do(req)
	if err != nil {
		log.Debug("terminal messages fetch failed", "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	return body.Messages
}
