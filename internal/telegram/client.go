// Package telegram is a small Telegram Bot API gateway: it receives updates by
// long polling or webhook and sends replies back to chats.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	defaultAPIURL      = "https://api.telegram.org"
	defaultHTTPTimeout = 60 * time.Second
	parseModeMarkdown  = "Markdown"
	maxMessageRunes    = 4096
)

// Update is the subset of the Bot API update object the bot reacts to.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

// APIError is returned when the Bot API answers with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

// ClientOptions configures the Bot API client.
type ClientOptions struct {
	Token      string
	APIURL     string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// Client calls the Telegram Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// NewClient validates opts and builds a client.
func NewClient(opts ClientOptions) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, eris.New("telegram bot token is required")
	}

	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return nil, eris.Wrapf(err, "parsing telegram api url: %s", apiURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    apiURL + "/bot" + token,
		logger:     opts.Logger,
	}, nil
}

// SendText delivers text to chatID. Markdown replies that Telegram refuses to
// parse are resent as plain text.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, markdown bool) error {
	text = truncateRunes(text, maxMessageRunes)
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if markdown {
		req.ParseMode = parseModeMarkdown
	}

	err := c.call(ctx, "sendMessage", req, nil)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if markdown && errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		c.logWarn(logrus.Fields{"chat_id": chatID, "description": apiErr.Description}, "markdown rejected, resending as plain text")
		req.ParseMode = ""
		return c.call(ctx, "sendMessage", req, nil)
	}

	return err
}

// GetUpdates long-polls for updates after offset, waiting up to timeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "encoding %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "building %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrapf(err, "calling %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "reading %s response", method)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return eris.Wrapf(err, "decoding %s response (status %d)", method, resp.StatusCode)
	}

	if !decoded.OK {
		code := decoded.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Method: method, Code: code, Description: decoded.Description}
	}

	if result == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return eris.Wrapf(err, "decoding %s result", method)
	}
	return nil
}

func (c *Client) logWarn(fields logrus.Fields, message string) {
	if c.logger == nil {
		return
	}
	c.logger.WithFields(fields).Warn(message)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
