package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// scrapeJobRequest mirrors the POST /scrape-job body.
type scrapeJobRequest struct {
	URL               string `json:"url"`
	DescriptionFormat string `json:"description_format,omitempty"`
}

// scrapeJobResponse covers both the 200 body and the {"error": ...} body.
type scrapeJobResponse struct {
	Success     bool   `json:"success"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

type client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (c *client) handleScrapeJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	resp, status, err := c.scrapeJob(ctx, scrapeJobRequest{
		URL:               url,
		DescriptionFormat: request.GetString("description_format", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if status != http.StatusOK {
		msg := resp.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return mcp.NewToolResultError(fmt.Sprintf("[%d] %s", status, msg)), nil
	}
	return mcp.NewToolResultText(formatResult(resp)), nil
}

func (c *client) scrapeJob(ctx context.Context, payload scrapeJobRequest) (*scrapeJobResponse, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.apiURL, "/")+"/scrape-job", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	var out scrapeJobResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	return &out, resp.StatusCode, nil
}

// formatResult renders a result as plain text. Missing fields are shown as
// "not found" so the caller knows what to fill in.
func formatResult(r *scrapeJobResponse) string {
	var sb strings.Builder
	if !r.Success {
		fmt.Fprintf(&sb, "Extraction incomplete: %s\n\n", r.Error)
	}
	for _, f := range []struct{ label, value string }{
		{"Title", r.JobTitle},
		{"Company", r.CompanyName},
		{"Location", r.Location},
	} {
		v := f.value
		if v == "" {
			v = "not found"
		}
		fmt.Fprintf(&sb, "%s: %s\n", f.label, v)
	}
	if r.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(r.Description)
	} else {
		sb.WriteString("Description: not found")
	}
	return sb.String()
}
