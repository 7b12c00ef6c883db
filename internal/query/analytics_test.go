package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/truassets/internal/model"
)

func TestGroupByType_FirstAppearanceOrder(t *testing.T) {
	ps := []model.Property{
		{Type: "villa", RaisedAmount: 100},
		{Type: "apartment", RaisedAmount: 200},
		{Type: "villa", RaisedAmount: 300},
	}

	got := GroupByType(ps)

	require.Len(t, got, 2)
	assert.Equal(t, "villa", got[0].Type)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 400.0, got[0].Revenue, 1e-9)
	assert.InDelta(t, 60.0, got[0].Profit, 1e-9)
	assert.Equal(t, "apartment", got[1].Type)
	assert.Equal(t, 1, got[1].Count)
	assert.InDelta(t, 30.0, got[1].Profit, 1e-9)
}

func TestGroupByStatus(t *testing.T) {
	ps := []model.Property{
		{Status: model.PropertyUpcoming},
		{Status: model.PropertyActive},
		{Status: model.PropertyUpcoming},
	}

	assert.Equal(t, []StatusSummary{
		{Status: model.PropertyUpcoming, Count: 2},
		{Status: model.PropertyActive, Count: 1},
	}, GroupByStatus(ps))
}

func TestBuildAnalytics(t *testing.T) {
	ps := []model.Property{
		{Type: "villa", TargetAmount: 1000000, RaisedAmount: 500000},
		{Type: "villa", TargetAmount: 2000000, RaisedAmount: 2000000},
	}

	a := BuildAnalytics(ps)

	assert.InDelta(t, 2500000.0, a.TotalInvestment, 1e-9)
	assert.InDelta(t, 375000.0, a.TotalProfit, 1e-9)
	assert.InDelta(t, 75.0, a.AvgOccupancy, 1e-9)
	assert.Equal(t, []TrendPoint{
		{Month: "Jan", Investment: 5, Target: 10},
		{Month: "Feb", Investment: 20, Target: 20},
	}, a.Trend)
}

func TestBuildAnalytics_Empty(t *testing.T) {
	a := BuildAnalytics(nil)
	assert.Zero(t, a.AvgOccupancy)
	assert.Empty(t, a.ByType)
	assert.NotNil(t, a.Trend)
}

func TestBuildAnalytics_TrendCapsAtSix(t *testing.T) {
	var ps []model.Property
	for i := 0; i < 9; i++ {
		ps = append(ps, model.Property{ID: fmt.Sprint(i), TargetAmount: 1})
	}
	a := BuildAnalytics(ps)
	require.Len(t, a.Trend, 6)
	assert.Equal(t, "Jun", a.Trend[5].Month)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "₹48.00L", Lakhs(4800000))
	assert.Equal(t, "₹1.25 Cr", Crores(12500000, 2))
	assert.Equal(t, "₹0.5 Cr", Crores(5000000, 1))
}

func TestFeature(t *testing.T) {
	p := model.Property{
		ID: "prop-1", Title: "Palm Villas", Location: "Pune, MH", Type: "villa",
		Price: 4800000, TargetAmount: 48000000, Investors: 3, ExpectedReturn: 12.5,
		Tenure: "5 years", Status: model.PropertyFunded,
	}

	f := Feature(p)

	assert.Equal(t, "Pune", f.City)
	assert.Equal(t, "₹48.00 L", f.StartingPrice)
	assert.Equal(t, "₹4.8 Cr", f.TotalValue)
	assert.Equal(t, "12.5%", f.ExpectedYield)
	assert.Equal(t, "3/10", f.AvailableUnits)
	assert.Equal(t, "Funded", f.Status)

	p.Status = model.PropertyUpcoming
	p.Price = 0
	f = Feature(p)
	assert.Equal(t, "Upcoming", f.Status)
	assert.Equal(t, "3/∞", f.AvailableUnits)
}
