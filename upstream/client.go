package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the CRM REST API. The API's contract belongs to the
// backend; the gateway only consumes it. There is no retry and no
// request queue; concurrent calls are independent. Cancellation and the
// per-request timeout both arrive through the context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx upstream reply. Message carries the server's
// own message when it sent one, so handlers can surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is an upstream 401, i.e. the stored
// bearer token is no longer accepted.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, bearer string) ([]byte, error) {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, "", bearer)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}, bearer string) ([]byte, error) {
	return c.doJSON(ctx, http.MethodPost, path, body, bearer)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}, bearer string) ([]byte, error) {
	return c.doJSON(ctx, http.MethodPut, path, body, bearer)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}, bearer string) ([]byte, error) {
	return c.doJSON(ctx, http.MethodPatch, path, body, bearer)
}

func (c *Client) Delete(ctx context.Context, path string, bearer string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "", bearer)
}

// FilePart is one uploaded file of a multipart request (profile photo,
// registration document).
type FilePart struct {
	Filename string
	Content  []byte
}

// PostMultipart submits form fields plus files as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, method, path string, fields map[string]string, files map[string]FilePart, bearer string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	for name, part := range files {
		fw, err := w.CreateFormFile(name, part.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(part.Content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, buf.Bytes(), w.FormDataContentType(), bearer)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, bearer string) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	return c.do(ctx, method, path, payload, "application/json", bearer)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType, bearer string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(rb, resp.StatusCode)}
	}
	return rb, nil
}

// serverMessage pulls the message out of an error body; the backend
// uses both "message" and "error" keys.
func serverMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
