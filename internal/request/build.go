package request

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// Request is a fully assembled call, ready for dispatch. URL already carries
// the merged query string; Body is nil when no body fields were given.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   map[string]any
}

// Build assembles a request from a method, a target URL and parsed items.
// A target without a scheme gets http://. An empty method defaults to GET,
// or POST when body fields are present.
func Build(method, target string, items []Item) (*Request, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("request: target URL is empty")
	}
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("request: parse URL %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("request: unsupported URL scheme %q", u.Scheme)
	}

	header := http.Header{}
	query := u.Query()
	var body map[string]any

	for _, item := range items {
		switch item.Kind {
		case ItemHeader:
			header.Add(item.Name, strings.TrimSpace(item.Value))
		case ItemQuery:
			query.Add(item.Name, item.Value)
		case ItemField:
			if body == nil {
				body = map[string]any{}
			}
			body[item.Name] = item.Value
		case ItemRawField:
			var v any
			if err := json.Unmarshal([]byte(item.Value), &v); err != nil {
				return nil, fmt.Errorf("request: field %q is not valid JSON: %w", item.Name, err)
			}
			if body == nil {
				body = map[string]any{}
			}
			body[item.Name] = v
		}
	}

	u.RawQuery = query.Encode()

	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		if body != nil {
			m = http.MethodPost
		} else {
			m = http.MethodGet
		}
	}

	return &Request{Method: m, URL: u.String(), Header: header, Body: body}, nil
}
