package api

import (
	"context"
	"net/url"
	"strconv"
)

const (
	// DefaultRankLimit is the keyword/library list size when none is given.
	DefaultRankLimit = 10
	// DefaultFilterLimit caps filtered rows when no limit is given.
	DefaultFilterLimit = 1000
)

// Summary fetches the analytics overview for outputPath.
func (c *Client) Summary(ctx context.Context, outputPath string) (*Summary, error) {
	p, err := c.get(ctx, "/api/analytics/summary", url.Values{"output_path": {outputPath}})
	if err != nil {
		return nil, err
	}
	return decodeInto[Summary](c, p), nil
}

// Distribution fetches the consumer/producer split for outputPath.
func (c *Client) Distribution(ctx context.Context, outputPath string) (*Distribution, error) {
	p, err := c.get(ctx, "/api/analytics/consumer-producer-distribution", url.Values{"output_path": {outputPath}})
	if err != nil {
		return nil, err
	}
	return decodeInto[Distribution](c, p), nil
}

// Keywords fetches the most used classification keywords.
// A limit of zero or less means DefaultRankLimit.
func (c *Client) Keywords(ctx context.Context, outputPath string, limit int) (*RankedCounts, error) {
	r, err := c.ranked(ctx, "/api/analytics/keywords", outputPath, limit)
	if err != nil {
		return nil, err
	}
	r.TotalUnique = r.UniqueKeywords
	return r, nil
}

// Libraries fetches the most used ML libraries.
// A limit of zero or less means DefaultRankLimit.
func (c *Client) Libraries(ctx context.Context, outputPath string, limit int) (*RankedCounts, error) {
	r, err := c.ranked(ctx, "/api/analytics/libraries", outputPath, limit)
	if err != nil {
		return nil, err
	}
	r.TotalUnique = r.UniqueLibraries
	return r, nil
}

func (c *Client) ranked(ctx context.Context, path, outputPath string, limit int) (*RankedCounts, error) {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	q := url.Values{
		"output_path": {outputPath},
		"limit":       {strconv.Itoa(limit)},
	}
	p, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	return decodeInto[RankedCounts](c, p), nil
}

// Filter returns the classified rows matching opts. Empty filter fields
// are left out of the query entirely.
func (c *Client) Filter(ctx context.Context, outputPath string, opts FilterOptions) (*FilterResult, error) {
	p, err := c.get(ctx, "/api/analytics/filter", filterQuery(outputPath, opts))
	if err != nil {
		return nil, err
	}
	return decodeInto[FilterResult](c, p), nil
}

func filterQuery(outputPath string, opts FilterOptions) url.Values {
	q := url.Values{"output_path": {outputPath}}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Keyword != "" {
		q.Set("keyword", opts.Keyword)
	}
	if opts.Library != "" {
		q.Set("library", opts.Library)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultFilterLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// AnalyticsHealth pings the analytics service.
func (c *Client) AnalyticsHealth(ctx context.Context) (Payload, error) {
	return c.get(ctx, "/api/analytics/health", nil)
}
