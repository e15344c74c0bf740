package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// myMemoryClient calls the MyMemory /get endpoint.
type myMemoryClient struct {
	baseURL string
	email   string
	http    *http.Client
}

// NewMyMemory returns a MyMemory client for cfg.
func NewMyMemory(cfg Config) Client {
	return &myMemoryClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		email:   cfg.Email,
		http:    makeHTTPClient(cfg.Proxy),
	}
}

func (m *myMemoryClient) ID() string { return MyMemory }

func (m *myMemoryClient) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" || source == AutoSource {
		source = "Autodetect"
	}
	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", source+"|"+req.Target)
	if m.email != "" {
		q.Set("de", m.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := m.http.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: MyMemory, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", &TransportError{Provider: MyMemory, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Provider: MyMemory, Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(body), 200))}
	}

	// responseStatus is a number on success and sometimes a string on error.
	res := gjson.ParseBytes(body)
	status := res.Get("responseStatus").Int()
	details := res.Get("responseDetails").String()
	if status != 0 && status != http.StatusOK {
		if isInvalidLanguage(details) {
			return "", fmt.Errorf("%s: %s: %w", MyMemory, details, ErrRejectedLocale)
		}
		return "", &TransportError{Provider: MyMemory, Status: int(status), Err: fmt.Errorf("%s", truncate(details, 200))}
	}

	text := strings.TrimSpace(res.Get("responseData.translatedText").String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", MyMemory, ErrEmptyTranslation)
	}
	if isInvalidLanguage(text) {
		// MyMemory sometimes reports bad language pairs as the translation.
		return "", fmt.Errorf("%s: %s: %w", MyMemory, text, ErrRejectedLocale)
	}
	return text, nil
}

func isInvalidLanguage(msg string) bool {
	upper := strings.ToUpper(msg)
	return strings.Contains(upper, "INVALID") && strings.Contains(upper, "LANGUAGE")
}
