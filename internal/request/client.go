package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Options configures dispatch.
type Options struct {
	// Timeout bounds the whole exchange.
	Timeout time.Duration
	// Verbose reports the outgoing request line and headers via OnRequest.
	Verbose bool
	// OnRequest, when set with Verbose, receives a printable rendering of
	// the outgoing request before it is sent.
	OnRequest func(line string)
}

// DefaultTimeout bounds dispatch when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Response holds a completed exchange with the body fully read.
type Response struct {
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do sends the request. Body fields marshal to a JSON object; Content-Type
// and Accept default to JSON, and every request carries an X-Request-ID
// unless the caller set one.
func Do(ctx context.Context, req *Request, opts Options) (*Response, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var payload io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("request: marshal body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("request: build %s %s: %w", req.Method, req.URL, err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json, */*")
	}
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	if opts.Verbose && opts.OnRequest != nil {
		opts.OnRequest(renderRequest(httpReq))
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("request: read response: %w", err)
	}
	return &Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// PrettyBody re-indents the body when it is JSON; anything else comes back
// untouched.
func (r *Response) PrettyBody() []byte {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return r.Body
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return r.Body
	}
	return append(out, '\n')
}

func renderRequest(req *http.Request) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n", req.Method, req.URL)
	for _, name := range headerNames(req.Header) {
		for _, v := range req.Header[name] {
			fmt.Fprintf(&b, "%s: %s\n", name, v)
		}
	}
	return b.String()
}

func headerNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
