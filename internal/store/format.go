package store

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jengzang/routesync/internal/models"
)

// RowFormatter renders the distance and date strings shown in list rows.
// The same strings are what search matches against. Not safe for
// concurrent use; each store owns one and uses it on its update loop.
type RowFormatter struct {
	printer *message.Printer
	fold    cases.Caser
}

// NewRowFormatter creates a formatter for a display language
func NewRowFormatter(tag language.Tag) *RowFormatter {
	return &RowFormatter{
		printer: message.NewPrinter(tag),
		fold:    cases.Fold(),
	}
}

// Distance formats meters as "850 m" or "12.40 km"
func (f *RowFormatter) Distance(meters float64) string {
	if meters < 1000 {
		return f.printer.Sprintf("%d m", int64(math.Round(meters)))
	}
	return f.printer.Sprintf("%.2f km", meters/1000)
}

// Date formats a start timestamp for list rows
func (f *RowFormatter) Date(r models.RouteRecord) string {
	if !r.HasTimestamp() {
		return ""
	}
	return r.StartTimestamp.Format(models.DateLayout)
}

// Fold case-folds s for case-insensitive matching
func (f *RowFormatter) Fold(s string) string {
	return f.fold.String(s)
}

// SearchText is the folded concatenation of the row title, distance and
// date. Unnamed routes match on their generated title ("Running Jun 28, 2024").
func (f *RowFormatter) SearchText(r models.RouteRecord, meters float64) string {
	parts := []string{r.DisplayName(), f.Distance(meters), f.Date(r)}
	return f.Fold(strings.Join(parts, " "))
}
