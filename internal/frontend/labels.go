package frontend

import (
	"github.com/maniaxatwork/jobs-server/internal/pagination"
)

// Labels are the texts used by the module templates
type Labels struct {
	More      string
	ReadMore  string
	Open      string
	By        string
	EmptyList string
	Empty     string
	GoBack    string
	Overview  string
	Entry     string
	Entries   string
	Months    [12]string

	Pagination pagination.Labels
}

// DefaultLabels are the English texts
var DefaultLabels = Labels{
	More:      "Read more …",
	ReadMore:  "Read the article: %s",
	Open:      "Open the link in a new window",
	By:        "by",
	EmptyList: "There are no entries.",
	Empty:     "There are no entries.",
	GoBack:    "Go back",
	Overview:  "Go to the overview",
	Entry:     "%d entry",
	Entries:   "%d entries",
	Months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	Pagination: pagination.DefaultLabels,
}

// LabelsFrom applies the site label overrides to the defaults. Unknown keys
// are ignored.
func LabelsFrom(overrides map[string]string) Labels {
	l := DefaultLabels
	fields := map[string]*string{
		"more":         &l.More,
		"readMore":     &l.ReadMore,
		"open":         &l.Open,
		"by":           &l.By,
		"emptyList":    &l.EmptyList,
		"empty":        &l.Empty,
		"goBack":       &l.GoBack,
		"jobsOverview": &l.Overview,
		"entry":        &l.Entry,
		"entries":      &l.Entries,
		"first":        &l.Pagination.First,
		"previous":     &l.Pagination.Previous,
		"next":         &l.Pagination.Next,
		"last":         &l.Pagination.Last,
		"totalPages":   &l.Pagination.Total,
	}
	for key, value := range overrides {
		if field, ok := fields[key]; ok && value != "" {
			*field = value
		}
	}
	return l
}
