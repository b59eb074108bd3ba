package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/billie-coop/mark/internal/api"
)

// Filter is one applied drill-down filter.
type Filter struct {
	Key   string
	Value string
}

// Row is one filtered result projected to the drill-down columns.
type Row struct {
	Project   string
	File      string
	Line      string
	Libraries string
	Keywords  string
}

// Drill is the table shown after clicking a chart element.
type Drill struct {
	Title   string
	Filters []Filter
	Count   int
	Rows    []Row
}

// Columns are the drill-down table headers.
var Columns = []string{"Project", "File", "Line", "Libraries", "Keywords"}

// Values returns the row cells in Columns order.
func (r Row) Values() []string {
	return []string{r.Project, r.File, r.Line, r.Libraries, r.Keywords}
}

// DrillDown fetches the rows behind point index of series. It returns nil
// without fetching when the point maps to no filter.
func (d *Dashboard) DrillDown(ctx context.Context, s Series, index int) (*Drill, error) {
	if index < 0 || index >= len(s.Labels) {
		return nil, fmt.Errorf("point %d out of range for %s", index, s.ID)
	}
	label := s.Labels[index]

	var opts api.FilterOptions
	var filter Filter
	switch s.ID {
	case DistributionPie, DistributionBar:
		cat := Classify(label)
		if cat == CategoryOther {
			return nil, nil
		}
		opts.Type = string(cat)
		filter = Filter{Key: "type", Value: string(cat)}
	case KeywordBar:
		opts.Keyword = label
		filter = Filter{Key: "keyword", Value: label}
	case LibraryBar:
		opts.Library = label
		filter = Filter{Key: "library", Value: label}
	default:
		return nil, nil
	}

	res, err := d.source.Filter(ctx, d.OutputPath(), opts)
	if err != nil {
		d.logger.Warn("drill-down failed", "series", s.ID, "label", label, "error", err)
		return nil, fmt.Errorf("failed to filter results: %w", err)
	}
	return buildDrill(res, []Filter{filter}), nil
}

func buildDrill(res *api.FilterResult, filters []Filter) *Drill {
	desc := make([]string, len(filters))
	for i, f := range filters {
		desc[i] = f.Key + ": " + f.Value
	}
	rows := make([]Row, 0, len(res.Results))
	for _, r := range res.Results {
		rows = append(rows, ProjectRow(r))
	}
	return &Drill{
		Title:   fmt.Sprintf("Filtered Results (%d items) - %s", res.Count, strings.Join(desc, ", ")),
		Filters: filters,
		Count:   res.Count,
		Rows:    rows,
	}
}

// ProjectRow maps a raw filtered result onto the drill-down columns,
// trying each alternative key and falling back to N/A.
func ProjectRow(r map[string]any) Row {
	return Row{
		Project:   firstSet(r, "ProjectName", "project"),
		File:      firstSet(r, "where", "file"),
		Line:      firstSet(r, "line_number", "line"),
		Libraries: firstSet(r, "libraries", "library"),
		Keywords:  firstSet(r, "keywords", "keyword"),
	}
}

func firstSet(r map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := cell(r[k]); ok {
			return s
		}
	}
	return "N/A"
}

// cell formats v, reporting false for null, empty, zero and false values.
func cell(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return "true", x
	case float64:
		if x == 0 {
			return "", false
		}
		return fmt.Sprint(x), true
	case int:
		if x == 0 {
			return "", false
		}
		return fmt.Sprint(x), true
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(x), true
	}
}
