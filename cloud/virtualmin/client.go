package virtualmin

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dirien/virtualmin-sdk/model"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	remotePath    = "/virtual-server/remote.cgi"
	statusSuccess = "success"

	// maxErrorBody caps how much of a failed response ends up in an error.
	maxErrorBody = 512
)

// Client calls programs of the Virtualmin remote API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// Response is the decoded JSON output of a remote program.
type Response struct {
	Command string          `json:"command"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Output  string          `json:"output"`
	Data    json.RawMessage `json:"data"`
}

// StatusError is returned when Virtualmin answers with a non-2xx status.
type StatusError struct {
	Program    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: unexpected HTTP status %d", e.Program, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg model.Config) *Client {
	transport := cleanhttp.DefaultTransport()
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // panels commonly use self-signed certificates
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.Host, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Transport: transport},
	}
}

// BaseURL returns the configured host without trailing slashes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call runs program with params and decodes the JSON answer. Only transport
// failures are returned as errors; the caller interprets Response.Status.
func (c *Client) Call(ctx context.Context, program string, params url.Values) (*Response, error) {
	form := url.Values{}
	for key, values := range params {
		form[key] = values
	}
	form.Set("program", program)
	form.Set("json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+remotePath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to build request", program)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	requestID := uuid.New().String()
	zap.S().Debugw("Virtualmin request", "program", program, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: request failed", program)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to read response", program)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{Program: program, StatusCode: resp.StatusCode, Body: excerpt}
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrapf(err, "%s: failed to decode response", program)
	}
	zap.S().Debugw("Virtualmin response", "program", program, "request_id", requestID, "status", response.Status)
	return &response, nil
}

// Success reports whether the program succeeded.
func (r *Response) Success() bool {
	return r.Status == statusSuccess
}

// Err returns nil on success, otherwise an error carrying the provider
// message or fallback when Virtualmin sent none.
func (r *Response) Err(fallback string) error {
	if r.Success() {
		return nil
	}
	if r.Error != "" {
		return errors.New(r.Error)
	}
	return errors.New(fallback)
}
