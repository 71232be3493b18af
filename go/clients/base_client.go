package clients

import (
	"net/http"
	"time"
)

// BaseClient is the HTTP client shared by the RPC clients. It adds fixed
// headers to every request.
type BaseClient struct {
	client  *http.Client
	headers map[string]string
}

func NewBaseClient() *BaseClient {
	return &BaseClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// WithHTTPClient replaces the underlying client, e.g. with an httptest server's
func (c *BaseClient) WithHTTPClient(client *http.Client) *BaseClient {
	c.client = client
	return c
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Do sends req after applying the fixed headers. Headers already present on
// the request win.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	return c.client.Do(req)
}
