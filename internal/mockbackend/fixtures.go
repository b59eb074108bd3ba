package mockbackend

import (
	"sort"
	"strconv"
	"strings"

	"github.com/billie-coop/mark/internal/api"
)

// Record is one classified ML usage in the analyzed projects.
type Record struct {
	Project  string
	File     string
	Line     int
	Library  string
	Keyword  string
	Category string // consumer or producer
}

// DefaultRecords is the dataset served when no other dataset is configured.
var DefaultRecords = []Record{
	{Project: "vision-app", File: "src/train.py", Line: 42, Library: "torch", Keyword: "fit", Category: "producer"},
	{Project: "vision-app", File: "src/infer.py", Line: 10, Library: "torch", Keyword: "predict", Category: "consumer"},
	{Project: "churn-model", File: "model.py", Line: 88, Library: "sklearn", Keyword: "fit", Category: "producer"},
	{Project: "chatbot", File: "bot/reply.py", Line: 5, Library: "transformers", Keyword: "pipeline", Category: "consumer"},
	{Project: "chatbot", File: "bot/embed.py", Line: 19, Library: "transformers", Keyword: "from_pretrained", Category: "consumer"},
	{Project: "forecast", File: "forecast.py", Line: 61, Library: "tensorflow", Keyword: "predict", Category: "consumer"},
}

// csvHeaders are the columns of the generated result CSVs.
var csvHeaders = []string{"ProjectName", "where", "line_number", "libraries", "keywords"}

type dataset []Record

func (d dataset) byCategory(cat string) dataset {
	var out dataset
	for _, r := range d {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

func (d dataset) summary(outputPath string) api.Summary {
	projects := map[string]struct{}{}
	libs := map[string]struct{}{}
	for _, r := range d {
		projects[r.Project] = struct{}{}
		libs[r.Library] = struct{}{}
	}
	return api.Summary{
		TotalModels:    len(d),
		ConsumerCount:  len(d.byCategory("consumer")),
		ProducerCount:  len(d.byCategory("producer")),
		TotalProjects:  len(projects),
		TotalLibraries: len(libs),
		OutputPath:     outputPath,
	}
}

func (d dataset) distribution() api.Distribution {
	consumers := len(d.byCategory("consumer"))
	producers := len(d.byCategory("producer"))
	pct := func(n int) float64 {
		if len(d) == 0 {
			return 0
		}
		return float64(n*10000/len(d)) / 100
	}
	return api.Distribution{
		Labels:      []string{"Consumer", "Producer"},
		Counts:      []int{consumers, producers},
		Percentages: []float64{pct(consumers), pct(producers)},
	}
}

// ranked counts values by descending frequency, ties by name, cut at limit.
// The second return is the number of distinct values.
func ranked(values []string, limit int) ([]string, []int, int) {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	unique := len(labels)
	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = counts[l]
	}
	return labels, out, unique
}

func (d dataset) keywords() []string {
	out := make([]string, len(d))
	for i, r := range d {
		out[i] = r.Keyword
	}
	return out
}

func (d dataset) libraries() []string {
	out := make([]string, len(d))
	for i, r := range d {
		out[i] = r.Library
	}
	return out
}

func (d dataset) filter(typ, keyword, library string, limit int) []map[string]any {
	out := []map[string]any{}
	for _, r := range d {
		if typ != "" && !strings.EqualFold(r.Category, typ) {
			continue
		}
		if keyword != "" && !strings.EqualFold(r.Keyword, keyword) {
			continue
		}
		if library != "" && !strings.EqualFold(r.Library, library) {
			continue
		}
		out = append(out, map[string]any{
			"ProjectName": r.Project,
			"where":       r.File,
			"line_number": r.Line,
			"libraries":   r.Library,
			"keywords":    r.Keyword,
			"type":        r.Category,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (d dataset) rows() [][]string {
	out := make([][]string, len(d))
	for i, r := range d {
		out[i] = []string{r.Project, r.File, strconv.Itoa(r.Line), r.Library, r.Keyword}
	}
	return out
}

// csvSize approximates the on-disk size of the rendered CSV.
func (d dataset) csvSize() int64 {
	n := len(strings.Join(csvHeaders, ",")) + 1
	for _, row := range d.rows() {
		n += len(strings.Join(row, ",")) + 1
	}
	return int64(n)
}
