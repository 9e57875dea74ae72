package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

type apiClient struct {
	host   string
	token  string
	client *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		host:   strings.TrimRight(strings.TrimSpace(opts.host), "/"),
		token:  strings.TrimSpace(opts.token),
		client: &http.Client{Timeout: requestTimeout},
	}
}

// do sends the request and prints the response envelope as indented JSON.
// Non-2xx responses are printed and then returned as an error.
func (c *apiClient) do(cmd *cobra.Command, method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), method, c.host+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), prettyJSON(raw))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
	}
	return nil
}

func prettyJSON(raw []byte) string {
	var v any
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}
