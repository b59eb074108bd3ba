package api

import (
	"context"
	"net/url"
	"strconv"
)

// ListResults returns the result files under outputPath.
func (c *Client) ListResults(ctx context.Context, outputPath string) (*ResultList, error) {
	p, err := c.get(ctx, "/api/results/list", url.Values{"output_path": {outputPath}})
	if err != nil {
		return nil, err
	}
	return decodeInto[ResultList](c, p), nil
}

// ViewResult returns one page of a result CSV.
func (c *Client) ViewResult(ctx context.Context, filepath string, opts ViewOptions) (*CSVView, error) {
	q := url.Values{"filepath": {filepath}}
	if opts.Limit != nil {
		q.Set("limit", strconv.Itoa(*opts.Limit))
	}
	if opts.Offset != nil {
		q.Set("offset", strconv.Itoa(*opts.Offset))
	}
	p, err := c.get(ctx, "/api/results/view", q)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data CSVView `json:"data"`
	}
	c.decode(p, &out)
	return &out.Data, nil
}

type searchBody struct {
	Filepath string `json:"filepath"`
	Query    string `json:"query"`
	Column   string `json:"column,omitempty"`
}

// SearchResult finds rows of a result CSV containing query. An empty column
// searches every column.
func (c *Client) SearchResult(ctx context.Context, filepath, query, column string) (*SearchResult, error) {
	p, err := c.post(ctx, "/api/results/search", searchBody{Filepath: filepath, Query: query, Column: column})
	if err != nil {
		return nil, err
	}
	var out struct {
		Results SearchResult `json:"results"`
	}
	c.decode(p, &out)
	return &out.Results, nil
}

// ResultStats summarizes the result files under outputPath.
func (c *Client) ResultStats(ctx context.Context, outputPath string) (*ResultStats, error) {
	p, err := c.get(ctx, "/api/results/stats", url.Values{"output_path": {outputPath}})
	if err != nil {
		return nil, err
	}
	var out struct {
		Stats ResultStats `json:"stats"`
	}
	c.decode(p, &out)
	return &out.Stats, nil
}
