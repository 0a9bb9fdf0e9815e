// Package invoiceapi is the HTTP client for the invoice data endpoint
// the export pipeline consumes. The endpoint itself (and everything
// behind it) is an external collaborator.
package invoiceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/davargas/facturex/internal/export"
	"github.com/davargas/facturex/internal/report"
)

// Client talks to the data API. Per-call deadlines come from the caller
// context; no global client timeout is set so that long CSV streams are
// not cut off mid-body.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// exportBody is the POST /export request contract.
type exportBody struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Format     string `json:"format"`
	Vendor     string `json:"vendor,omitempty"`
	NIT        string `json:"nit,omitempty"`
	IncludeIVA bool   `json:"includeIVA"`
}

// ExportCSV issues the CSV export request and returns the streamable
// response for incremental consumption. The caller owns resp.Body.
func (c *Client) ExportCSV(ctx context.Context, req export.Request) (*http.Response, error) {
	resp, err := c.postExport(ctx, req, "csv")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &export.NetworkError{
			Op:         "export csv",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", string(body)),
		}
	}
	return resp, nil
}

// FetchReportData fetches the raw rows and aggregates for a PDF export.
// The detail variant posts to /export; the summary report variant hits
// GET /reports/export with equivalent query parameters.
func (c *Client) FetchReportData(ctx context.Context, req export.Request) (*report.Data, error) {
	var resp *http.Response
	var err error
	if req.Report {
		resp, err = c.getReportExport(ctx, req)
	} else {
		resp, err = c.postExport(ctx, req, "pdf")
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &export.NetworkError{
			Op:         "fetch report data",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", string(body)),
		}
	}

	var data report.Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &export.NetworkError{Op: "fetch report data", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &data, nil
}

func (c *Client) postExport(ctx context.Context, req export.Request, format string) (*http.Response, error) {
	body, err := json.Marshal(exportBody{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Format:     format,
		Vendor:     req.Vendor,
		NIT:        req.NIT,
		IncludeIVA: req.IncludeTax,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/export", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &export.NetworkError{Op: "export " + format, Err: err}
	}
	return resp, nil
}

func (c *Client) getReportExport(ctx context.Context, req export.Request) (*http.Response, error) {
	q := url.Values{}
	q.Set("startDate", req.StartDate)
	q.Set("endDate", req.EndDate)
	q.Set("format", "pdf")
	if req.Vendor != "" {
		q.Set("vendor", req.Vendor)
	}
	if req.NIT != "" {
		q.Set("nit", req.NIT)
	}
	if req.IncludeTax {
		q.Set("includeIVA", "true")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/export?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &export.NetworkError{Op: "reports export", Err: err}
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
