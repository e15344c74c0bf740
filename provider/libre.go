package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// libreClient calls a LibreTranslate /translate endpoint.
type libreClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewLibre returns a LibreTranslate client for cfg.
func NewLibre(cfg Config) Client {
	return &libreClient{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/translate",
		apiKey:   cfg.APIKey,
		http:     makeHTTPClient(cfg.Proxy),
	}
}

func (l *libreClient) ID() string { return Libre }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

func (l *libreClient) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" {
		source = AutoSource
	}
	payload, err := json.Marshal(libreRequest{
		Q:      req.Text,
		Source: source,
		Target: req.Target,
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: Libre, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", &TransportError{Provider: Libre, Status: resp.StatusCode, Err: err}
	}

	res := gjson.ParseBytes(body)
	if resp.StatusCode != http.StatusOK {
		msg := res.Get("error").String()
		if msg == "" {
			msg = truncate(string(body), 200)
		}
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "language") {
			return "", fmt.Errorf("%s: %s: %w", Libre, msg, ErrRejectedLocale)
		}
		return "", &TransportError{Provider: Libre, Status: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}

	text := strings.TrimSpace(res.Get("translatedText").String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", Libre, ErrEmptyTranslation)
	}
	return text, nil
}
