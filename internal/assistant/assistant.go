// Package assistant talks to the external AI assistant that answers
// questions about the company's figures and reads invoices from text.
package assistant

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

	"go.uber.org/zap"

	"github.com/simonvc/pgcledger/internal/documents"
)

// Fallback is shown to the user whenever the assistant cannot answer.
const Fallback = "Desculpe, o assistente não está disponível de momento. Tente novamente mais tarde."

var (
	ErrNotConfigured = errors.New("assistant endpoint is not configured")
	ErrEmptyPrompt   = errors.New("prompt is required")
	ErrBadResponse   = errors.New("assistant returned an unusable response")
)

type Config struct {
	Endpoint string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	APIKey   string        `yaml:"api_key" envconfig:"API_KEY"`
	Model    string        `yaml:"model" envconfig:"MODEL"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type request struct {
	Model   string          `json:"model,omitempty"`
	Prompt  string          `json:"prompt"`
	Context json.RawMessage `json:"context,omitempty"`
	Schema  json.RawMessage `json:"response_schema,omitempty"`
}

type response struct {
	Text string `json:"text"`
}

// Reply is the assistant's answer. When the call failed Text holds the
// fallback message and Err the cause.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Err      error  `json:"-"`
}

// Ask sends a question together with a JSON summary of the business data
// the answer should be based on. It never retries.
func (c *Client) Ask(ctx context.Context, prompt string, summary any) Reply {
	text, err := c.ask(ctx, prompt, summary, nil)
	if err != nil {
		c.log.Warn("assistant request failed", zap.Error(err))
		return Reply{Text: Fallback, Fallback: true, Err: err}
	}
	return Reply{Text: text}
}

var invoiceSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "number": {"type": "string"},
    "type": {"type": "string", "enum": ["FT", "FR", "FS", "NC", "ND"]},
    "client_id": {"type": "string"},
    "client_name": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "kind": {"type": "string", "enum": ["PRODUCT", "SERVICE"]},
          "quantity": {"type": "number"},
          "unit_price": {"type": "number"},
          "tax_rate": {"type": "number"}
        },
        "required": ["description", "quantity", "unit_price"]
      }
    }
  },
  "required": ["number", "client_name", "items"]
}`)

type extractedInvoice struct {
	Number     string           `json:"number"`
	Type       string           `json:"type"`
	ClientID   string           `json:"client_id"`
	ClientName string           `json:"client_name"`
	Date       string           `json:"date"`
	Items      []documents.Item `json:"items"`
}

// ExtractInvoice asks the assistant to read a draft invoice out of free
// text, constraining the answer to the invoice schema.
func (c *Client) ExtractInvoice(ctx context.Context, text string) (*documents.Invoice, error) {
	raw, err := c.ask(ctx, "Extraia os dados da fatura do texto seguinte:\n"+text, nil, invoiceSchema)
	if err != nil {
		return nil, err
	}
	var x extractedInvoice
	if err := json.Unmarshal([]byte(raw), &x); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	inv := &documents.Invoice{
		Number:     x.Number,
		Type:       documents.InvoiceType(x.Type),
		ClientID:   x.ClientID,
		ClientName: x.ClientName,
		Status:     documents.InvoiceDraft,
		Items:      x.Items,
	}
	if inv.Type == "" {
		inv.Type = documents.TypeFatura
	}
	if x.Date != "" {
		if dt, err := time.Parse("2006-01-02", x.Date); err == nil {
			inv.Date = dt
		}
	}
	inv.Recalculate()
	return inv, nil
}

func (c *Client) ask(ctx context.Context, prompt string, summary any, schema json.RawMessage) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	body := request{Model: c.cfg.Model, Prompt: prompt, Schema: schema}
	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return "", fmt.Errorf("marshal summary: %w", err)
		}
		body.Context = data
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}
	var out response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrBadResponse)
	}
	return out.Text, nil
}
