package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// limsClient is an unexported concrete implementation of LIMSClient.
type limsClient struct {
	*HTTPClient
}

// NewLIMSClient creates a configured LIMSClient for the provided backend base URL
// and API token. The concrete returned type is unexported; callers work with the
// LIMSClient interface.
func NewLIMSClient(baseURL, token string, timeout time.Duration) LIMSClient {
	return &limsClient{
		HTTPClient: NewHTTPClient(baseURL, token, timeout),
	}
}

func (c *limsClient) GetEligibleSamples(ctx context.Context, query EligibleSamplesQuery) (*EligibleSamplesPage, error) {
	resp, err := c.DoReq(ctx, http.MethodGet, "/samples/eligible", nil, query.Values())
	if err != nil {
		return nil, fmt.Errorf("get eligible samples (test_ids='%s'): %w", query.TestIDs, err)
	}
	var page EligibleSamplesPage
	if err := json.Unmarshal(resp.Bytes(), &page); err != nil {
		return nil, fmt.Errorf("get eligible samples: failed to unmarshal response: %w", err)
	}
	return &page, nil
}

func (c *limsClient) ValidateBatchCompatibility(ctx context.Context, containerIDs []string) (*CompatibilityResult, error) {
	body := map[string]any{"container_ids": containerIDs}
	resp, err := c.DoReq(ctx, http.MethodPost, "/batches/validate-compatibility", body, nil)
	if err != nil {
		return nil, fmt.Errorf("validate compatibility of %d containers: %w", len(containerIDs), err)
	}
	var result CompatibilityResult
	if err := json.Unmarshal(resp.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("validate compatibility: failed to unmarshal response: %w", err)
	}
	return &result, nil
}

func (c *limsClient) GetContainers(ctx context.Context, projectIDs []string) ([]Container, error) {
	params := url.Values{}
	for _, id := range projectIDs {
		params.Add("project_ids", id)
	}
	resp, err := c.DoReq(ctx, http.MethodGet, "/containers", nil, params)
	if err != nil {
		return nil, fmt.Errorf("get containers: %w", err)
	}
	var containers []Container
	if err := decodeList(resp.Bytes(), "containers", &containers); err != nil {
		return nil, fmt.Errorf("get containers: %w", err)
	}
	return containers, nil
}

func (c *limsClient) GetProjects(ctx context.Context) ([]Project, error) {
	resp, err := c.DoReq(ctx, http.MethodGet, "/projects", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	var projects []Project
	if err := decodeList(resp.Bytes(), "projects", &projects); err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	return projects, nil
}

func (c *limsClient) GetAnalyses(ctx context.Context) ([]Analysis, error) {
	resp, err := c.DoReq(ctx, http.MethodGet, "/analyses", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}
	var analyses []Analysis
	if err := decodeList(resp.Bytes(), "analyses", &analyses); err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}
	return analyses, nil
}

func (c *limsClient) GetListEntries(ctx context.Context, listName string) ([]ListEntry, error) {
	endpoint := fmt.Sprintf("/lists/%s/entries", url.PathEscape(listName))
	resp, err := c.DoReq(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get list entries '%s': %w", listName, err)
	}
	var entries []ListEntry
	if err := decodeList(resp.Bytes(), "entries", &entries); err != nil {
		return nil, fmt.Errorf("get list entries '%s': %w", listName, err)
	}
	return entries, nil
}

func (c *limsClient) GetContainerTypes(ctx context.Context) ([]ContainerType, error) {
	resp, err := c.DoReq(ctx, http.MethodGet, "/container-types", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get container types: %w", err)
	}
	var types []ContainerType
	if err := decodeList(resp.Bytes(), "container_types", &types); err != nil {
		return nil, fmt.Errorf("get container types: %w", err)
	}
	return types, nil
}

func (c *limsClient) CreateBatch(ctx context.Context, payload *BatchPayload) (*CreatedBatch, error) {
	resp, err := c.DoReq(ctx, http.MethodPost, "/batches", payload, nil)
	if err != nil {
		return nil, fmt.Errorf("create batch '%s': %w", payload.Name, err)
	}
	created, err := decodeCreated(resp.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create batch '%s': %w", payload.Name, err)
	}
	return created, nil
}
