package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureQuery records the query of the last request.
func captureQuery(t *testing.T, body string) (*Client, *url.Values, *string) {
	t.Helper()
	var q url.Values
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		raw = r.URL.RawQuery
		_, _ = io.WriteString(w, body)
	})
	return c, &q, &raw
}

func TestFilter_Params(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want url.Values
	}{
		{
			name: "no_filters",
			want: url.Values{"output_path": {"/out dir"}, "limit": {"1000"}},
		},
		{
			name: "type_only",
			opts: FilterOptions{Type: "consumer"},
			want: url.Values{"output_path": {"/out dir"}, "limit": {"1000"}, "type": {"consumer"}},
		},
		{
			name: "keyword_and_library",
			opts: FilterOptions{Keyword: "fit&predict", Library: "scikit learn", Limit: 5},
			want: url.Values{"output_path": {"/out dir"}, "limit": {"5"}, "keyword": {"fit&predict"}, "library": {"scikit learn"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, q, raw := captureQuery(t, `{"count":0,"results":[]}`)

			_, err := c.Filter(context.Background(), "/out dir", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *q)
			for _, key := range []string{"type", "keyword", "library"} {
				if _, ok := tt.want[key]; !ok {
					assert.NotContains(t, *raw, key+"=")
				}
			}
		})
	}
}

func TestFilter_PercentEncoding(t *testing.T) {
	c, _, raw := captureQuery(t, `{}`)

	_, err := c.Filter(context.Background(), "/out", FilterOptions{Keyword: "a&b=c"})
	require.NoError(t, err)
	assert.Contains(t, *raw, "keyword=a%26b%3Dc")
	assert.Contains(t, *raw, "output_path=%2Fout")
}

func TestFilter_SpacesAsPercent20(t *testing.T) {
	c, q, raw := captureQuery(t, `{}`)

	_, err := c.Filter(context.Background(), "/out dir", FilterOptions{Library: "scikit learn", Keyword: "a+b"})
	require.NoError(t, err)
	assert.Contains(t, *raw, "library=scikit%20learn")
	assert.Contains(t, *raw, "output_path=%2Fout%20dir")
	assert.Contains(t, *raw, "keyword=a%2Bb")
	assert.NotContains(t, *raw, "+")
	assert.Equal(t, "a+b", q.Get("keyword"))
}

func TestRankedLimits(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(c *Client, limit int) (*RankedCounts, error)
		path  string
		body  string
		total int
	}{
		{
			name: "keywords",
			fn: func(c *Client, limit int) (*RankedCounts, error) {
				return c.Keywords(context.Background(), "/out", limit)
			},
			path:  "/api/analytics/keywords",
			body:  `{"labels":["fit"],"counts":[4],"total_unique_keywords":7}`,
			total: 7,
		},
		{
			name: "libraries",
			fn: func(c *Client, limit int) (*RankedCounts, error) {
				return c.Libraries(context.Background(), "/out", limit)
			},
			path:  "/api/analytics/libraries",
			body:  `{"labels":["torch"],"counts":[4],"total_unique_libraries":3}`,
			total: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			var limits []string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				limits = append(limits, r.URL.Query().Get("limit"))
				_, _ = io.WriteString(w, tt.body)
			})

			r, err := tt.fn(c, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.total, r.TotalUnique)
			assert.Equal(t, []int{4}, r.Counts)

			_, err = tt.fn(c, 25)
			require.NoError(t, err)

			assert.Equal(t, tt.path, path)
			assert.Equal(t, []string{"10", "25"}, limits)
		})
	}
}

func TestDistribution(t *testing.T) {
	c, q, _ := captureQuery(t, `{"success":true,"labels":["Consumer","Producer"],"counts":[3,1],"percentages":[75.0,25.0]}`)

	d, err := c.Distribution(context.Background(), "/out")
	require.NoError(t, err)
	assert.Equal(t, "/out", q.Get("output_path"))
	assert.Equal(t, []string{"Consumer", "Producer"}, d.Labels)
	assert.Equal(t, []int{3, 1}, d.Counts)
	assert.Equal(t, []float64{75, 25}, d.Percentages)
	assert.NoError(t, d.Validate())
}

func TestDistributionValidate(t *testing.T) {
	d := Distribution{Labels: []string{"a", "b"}, Counts: []int{1}, Percentages: []float64{1, 2}}
	err := d.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "counts=1"))
}

func TestSummary(t *testing.T) {
	c, _, _ := captureQuery(t, `{"success":true,"total_models":4,"consumer_count":3,"producer_count":1,"total_projects":2,"total_libraries":5,"last_analysis_id":"7","output_path":"/out"}`)

	s, err := c.Summary(context.Background(), "/out")
	require.NoError(t, err)
	assert.Equal(t, Summary{
		TotalModels:    4,
		ConsumerCount:  3,
		ProducerCount:  1,
		TotalProjects:  2,
		TotalLibraries: 5,
		LastAnalysisID: "7",
		OutputPath:     "/out",
	}, *s)
}
