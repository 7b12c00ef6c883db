package query

import (
	"fmt"

	"github.com/sakif/truassets/internal/model"
)

// TypeSummary accumulates the properties of one type.
type TypeSummary struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Profit  float64 `json:"profit"`
	Revenue float64 `json:"revenue"`
}

// StatusSummary counts the properties in one status.
type StatusSummary struct {
	Status model.PropertyStatus `json:"status"`
	Count  int                  `json:"count"`
}

// GroupByType sums count, profit and revenue per property type. Groups are
// returned in order of first appearance.
func GroupByType(properties []model.Property) []TypeSummary {
	index := make(map[string]*TypeSummary)
	var order []string
	for _, p := range properties {
		s, ok := index[p.Type]
		if !ok {
			s = &TypeSummary{Type: p.Type}
			index[p.Type] = s
			order = append(order, p.Type)
		}
		s.Count++
		s.Profit += Profit(p)
		s.Revenue += p.RaisedAmount
	}

	out := make([]TypeSummary, 0, len(order))
	for _, t := range order {
		out = append(out, *index[t])
	}
	return out
}

// GroupByStatus counts properties per status, in order of first appearance.
func GroupByStatus(properties []model.Property) []StatusSummary {
	index := make(map[model.PropertyStatus]*StatusSummary)
	var order []model.PropertyStatus
	for _, p := range properties {
		s, ok := index[p.Status]
		if !ok {
			s = &StatusSummary{Status: p.Status}
			index[p.Status] = s
			order = append(order, p.Status)
		}
		s.Count++
	}

	out := make([]StatusSummary, 0, len(order))
	for _, st := range order {
		out = append(out, *index[st])
	}
	return out
}

// TrendPoint is one bar of the investment trend chart, in lakhs.
type TrendPoint struct {
	Month      string  `json:"month"`
	Investment float64 `json:"investment"`
	Target     float64 `json:"target"`
}

var trendMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// Analytics is the admin dashboard aggregate.
type Analytics struct {
	TotalInvestment float64         `json:"totalInvestment"`
	TotalProfit     float64         `json:"totalProfit"`
	AvgOccupancy    float64         `json:"avgOccupancy"` // percent of target raised, averaged
	ByType          []TypeSummary   `json:"byType"`
	ByStatus        []StatusSummary `json:"byStatus"`
	Trend           []TrendPoint    `json:"trend"`
}

// BuildAnalytics aggregates the whole catalog. AvgOccupancy is 0 for an
// empty catalog, and a property with a zero target counts as 0% occupied.
// The trend covers the first six properties in catalog order.
func BuildAnalytics(properties []model.Property) Analytics {
	a := Analytics{
		ByType:   GroupByType(properties),
		ByStatus: GroupByStatus(properties),
		Trend:    []TrendPoint{},
	}
	var occupancy float64
	for _, p := range properties {
		a.TotalInvestment += p.RaisedAmount
		a.TotalProfit += Profit(p)
		if p.TargetAmount != 0 {
			occupancy += p.RaisedAmount / p.TargetAmount
		}
	}
	if len(properties) > 0 {
		a.AvgOccupancy = occupancy / float64(len(properties)) * 100
	}

	for i, p := range properties {
		if i == len(trendMonths) {
			break
		}
		a.Trend = append(a.Trend, TrendPoint{
			Month:      trendMonths[i],
			Investment: p.RaisedAmount / Lakh,
			Target:     p.TargetAmount / Lakh,
		})
	}
	return a
}

// Lakhs formats an amount in lakhs, e.g. "₹48.00L".
func Lakhs(amount float64) string {
	return fmt.Sprintf("₹%.2fL", amount/Lakh)
}

// Crores formats an amount in crores with the given number of decimals, e.g.
// "₹1.2 Cr".
func Crores(amount float64, decimals int) string {
	return fmt.Sprintf("₹%.*f Cr", decimals, amount/Crore)
}
