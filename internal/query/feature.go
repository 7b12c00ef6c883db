package query

import (
	"fmt"
	"math"

	"github.com/sakif/truassets/internal/model"
)

// Featured is the card shown for a property in the public catalog.
type Featured struct {
	ID             string  `json:"id"`
	Image          string  `json:"image"`
	Title          string  `json:"title"`
	Location       string  `json:"location"`
	City           string  `json:"city"`
	Type           string  `json:"type"`
	StartingPrice  string  `json:"startingPrice"`
	PriceValue     float64 `json:"priceValue"`
	TotalValue     string  `json:"totalValue"`
	ExpectedYield  string  `json:"expectedYield"`
	Tenure         string  `json:"tenure"`
	AvailableUnits string  `json:"availableUnits"` // "investors/total units"
	Status         string  `json:"status"`
}

var statusLabels = map[model.PropertyStatus]string{
	model.PropertyActive: "Available",
	model.PropertyFunded: "Funded",
}

// Feature projects p into its catalog card. Total units are
// floor(target/price); a zero price leaves the units unbounded.
func Feature(p model.Property) Featured {
	label, ok := statusLabels[p.Status]
	if !ok {
		label = "Upcoming"
	}
	units := "∞"
	if p.Price != 0 {
		units = fmt.Sprintf("%.0f", math.Floor(p.TargetAmount/p.Price))
	}
	return Featured{
		ID:             p.ID,
		Image:          p.Image,
		Title:          p.Title,
		Location:       p.Location,
		City:           City(p.Location),
		Type:           p.Type,
		StartingPrice:  fmt.Sprintf("₹%.2f L", p.Price/Lakh),
		PriceValue:     p.Price,
		TotalValue:     Crores(p.TargetAmount, 1),
		ExpectedYield:  fmt.Sprintf("%g%%", p.ExpectedReturn),
		Tenure:         p.Tenure,
		AvailableUnits: fmt.Sprintf("%d/%s", p.Investors, units),
		Status:         label,
	}
}

// FeatureAll projects every property in order.
func FeatureAll(properties []model.Property) []Featured {
	out := make([]Featured, 0, len(properties))
	for _, p := range properties {
		out = append(out, Feature(p))
	}
	return out
}
