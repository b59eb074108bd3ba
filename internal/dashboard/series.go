package dashboard

import (
	"fmt"
	"strings"

	"github.com/billie-coop/mark/internal/api"
)

// SeriesID identifies which chart a series feeds.
type SeriesID string

const (
	DistributionPie SeriesID = "distribution-pie"
	DistributionBar SeriesID = "distribution-bar"
	KeywordBar      SeriesID = "keywords"
	LibraryBar      SeriesID = "libraries"
)

// Kind is how a series is drawn.
type Kind string

const (
	KindPie Kind = "pie"
	KindBar Kind = "bar"
)

// Chart colors.
const (
	ColorConsumer = "#36A2EB"
	ColorProducer = "#FF6384"
	ColorOther    = "#C9CBCF"
)

// Palette colors ranked bars in order, repeating when exhausted.
var Palette = []string{"#4BC0C0", "#9966FF", "#FF9F40", "#FFCD56", "#C9CBCF"}

// Series is chart-ready data.
type Series struct {
	ID     SeriesID
	Kind   Kind
	Title  string
	Labels []string
	Values []float64
	Colors []string
	// Unit is appended to values in labels, such as "%".
	Unit string
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Labels)
}

// Category is the classification a label falls in.
type Category string

const (
	CategoryConsumer Category = "consumer"
	CategoryProducer Category = "producer"
	CategoryOther    Category = ""
)

// Classify buckets a label by case-insensitive substring.
func Classify(label string) Category {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "consumer"):
		return CategoryConsumer
	case strings.Contains(l, "producer"):
		return CategoryProducer
	}
	return CategoryOther
}

// CategoryColor returns the chart color of a label.
func CategoryColor(label string) string {
	switch Classify(label) {
	case CategoryConsumer:
		return ColorConsumer
	case CategoryProducer:
		return ColorProducer
	}
	return ColorOther
}

// PieSeries charts the distribution percentages.
func PieSeries(d *api.Distribution) Series {
	return Series{
		ID:     DistributionPie,
		Kind:   KindPie,
		Title:  "Consumer vs Producer Distribution (%)",
		Labels: cloneStrings(d.Labels),
		Values: cloneFloats(d.Percentages),
		Colors: categoryColors(d.Labels),
		Unit:   "%",
	}
}

// BarSeries charts the distribution counts.
func BarSeries(d *api.Distribution) Series {
	return Series{
		ID:     DistributionBar,
		Kind:   KindBar,
		Title:  "Consumer vs Producer Counts",
		Labels: cloneStrings(d.Labels),
		Values: intsToFloats(d.Counts),
		Colors: categoryColors(d.Labels),
	}
}

// KeywordSeries charts the top keywords.
func KeywordSeries(r *api.RankedCounts) Series {
	return rankedSeries(KeywordBar, fmt.Sprintf("Top %d Keywords Used in Classification", len(r.Labels)), r)
}

// LibrarySeries charts the top libraries.
func LibrarySeries(r *api.RankedCounts) Series {
	return rankedSeries(LibraryBar, fmt.Sprintf("Top %d ML Libraries Used", len(r.Labels)), r)
}

func rankedSeries(id SeriesID, title string, r *api.RankedCounts) Series {
	colors := make([]string, len(r.Labels))
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}
	return Series{
		ID:     id,
		Kind:   KindBar,
		Title:  title,
		Labels: cloneStrings(r.Labels),
		Values: intsToFloats(r.Counts),
		Colors: colors,
	}
}

func categoryColors(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = CategoryColor(l)
	}
	return out
}

func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func cloneStrings(in []string) []string {
	return append([]string(nil), in...)
}

func cloneFloats(in []float64) []float64 {
	return append([]float64(nil), in...)
}
