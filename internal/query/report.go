package query

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sakif/truassets/internal/model"
)

// ProfitMargin is the fixed share of raised capital booked as profit.
const ProfitMargin = 0.15

// AllValues is the report filter sentinel that matches every type or status.
const AllValues = "all"

// Profit is the booked profit on a property.
func Profit(p model.Property) float64 {
	return p.RaisedAmount * ProfitMargin
}

// ROI is the profit as a percentage of the target amount, or 0 when the
// target is 0.
func ROI(p model.Property) float64 {
	if p.TargetAmount == 0 {
		return 0
	}
	return Profit(p) / p.TargetAmount * 100
}

// ReportCriteria narrows a report by type and status. Empty or AllValues
// matches everything.
type ReportCriteria struct {
	Type   string
	Status string
}

func (c ReportCriteria) matches(p model.Property) bool {
	if c.Type != "" && c.Type != AllValues && p.Type != c.Type {
		return false
	}
	if c.Status != "" && c.Status != AllValues && string(p.Status) != c.Status {
		return false
	}
	return true
}

// ReportRow is one property in a report.
type ReportRow struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Type         string               `json:"type"`
	Status       model.PropertyStatus `json:"status"`
	TargetAmount float64              `json:"targetAmount"`
	RaisedAmount float64              `json:"raisedAmount"`
	Profit       float64              `json:"profit"`
	ROI          float64              `json:"roi"`
}

// Report is the admin revenue report over a filtered catalog.
type Report struct {
	Rows         []ReportRow `json:"rows"`
	Count        int         `json:"count"`
	Total        int         `json:"total"` // catalog size before filtering
	TotalRevenue float64     `json:"totalRevenue"`
	TotalProfit  float64     `json:"totalProfit"`
}

// BuildReport filters properties by c and totals revenue and profit over the
// matching rows.
func BuildReport(properties []model.Property, c ReportCriteria) Report {
	r := Report{Rows: []ReportRow{}, Total: len(properties)}
	for _, p := range properties {
		if !c.matches(p) {
			continue
		}
		row := ReportRow{
			ID:           p.ID,
			Title:        p.Title,
			Type:         p.Type,
			Status:       p.Status,
			TargetAmount: p.TargetAmount,
			RaisedAmount: p.RaisedAmount,
			Profit:       Profit(p),
			ROI:          ROI(p),
		}
		r.Rows = append(r.Rows, row)
		r.TotalRevenue += p.RaisedAmount
		r.TotalProfit += row.Profit
	}
	r.Count = len(r.Rows)
	return r
}

// CSVHeader is the first line of an exported report.
var CSVHeader = []string{"Property Name", "Type", "Status", "Target Amount", "Raised Amount", "Profit", "ROI %"}

// WriteCSV writes rows as comma-joined lines after CSVHeader, with numbers to
// two decimals and lines separated by "\n" (no trailing newline).
//
// Fields are not quoted or escaped: a title containing a comma shifts the
// columns of its row.
func WriteCSV(w io.Writer, rows []ReportRow) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))
	for _, r := range rows {
		lines = append(lines, strings.Join([]string{
			r.Title,
			r.Type,
			string(r.Status),
			fixed2(r.TargetAmount),
			fixed2(r.RaisedAmount),
			fixed2(r.Profit),
			fixed2(r.ROI),
		}, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// ReportFilename names an export made at now, using the UTC date.
func ReportFilename(now time.Time) string {
	return "property-reports-" + now.UTC().Format(time.DateOnly) + ".csv"
}

func fixed2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
