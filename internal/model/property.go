package model

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// PlaceholderImage is used when a property is submitted without an image URL.
const PlaceholderImage = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800"

// PropertyStatus is the fundraising state of a property.
type PropertyStatus string

const (
	PropertyActive   PropertyStatus = "active"
	PropertyFunded   PropertyStatus = "funded"
	PropertyUpcoming PropertyStatus = "upcoming"
)

// Property is an investable listing in the catalog.
//
// Type is an open enum (apartment, villa, commercial, residential, plot, ...).
// Amounts are float64 and are not range-checked: negative or NaN values are
// accepted and flow into the aggregates unchanged. RaisedAmount may exceed
// TargetAmount.
type Property struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Location       string         `json:"location"` // conventionally "City, State"
	Type           string         `json:"type"`
	Price          float64        `json:"price"` // per-unit entry price
	TargetAmount   float64        `json:"targetAmount"`
	RaisedAmount   float64        `json:"raisedAmount"`
	Investors      int            `json:"investors"`
	ExpectedReturn float64        `json:"expectedReturn"` // percent
	Tenure         string         `json:"tenure"`
	Image          string         `json:"image"`
	Description    string         `json:"description"`
	Amenities      []string       `json:"amenities"`
	Status         PropertyStatus `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// MarshalJSON writes non-finite amounts as null, which decodes back to 0.
// Without it a single NaN would make the whole catalog unencodable.
func (p Property) MarshalJSON() ([]byte, error) {
	type plain Property
	return json.Marshal(struct {
		plain
		Price          *float64 `json:"price"`
		TargetAmount   *float64 `json:"targetAmount"`
		RaisedAmount   *float64 `json:"raisedAmount"`
		ExpectedReturn *float64 `json:"expectedReturn"`
	}{
		plain:          plain(p),
		Price:          finite(p.Price),
		TargetAmount:   finite(p.TargetAmount),
		RaisedAmount:   finite(p.RaisedAmount),
		ExpectedReturn: finite(p.ExpectedReturn),
	})
}

// Clone returns a copy that shares no slices with p.
func (p Property) Clone() Property {
	p.Amenities = slices.Clone(p.Amenities)
	return p
}

// PropertyDraft is the input of an add: every field except ID and CreatedAt,
// which the store assigns.
type PropertyDraft struct {
	Title          string         `json:"title"`
	Location       string         `json:"location"`
	Type           string         `json:"type"`
	Price          float64        `json:"price"`
	TargetAmount   float64        `json:"targetAmount"`
	RaisedAmount   float64        `json:"raisedAmount"`
	Investors      int            `json:"investors"`
	ExpectedReturn float64        `json:"expectedReturn"`
	Tenure         string         `json:"tenure"`
	Image          string         `json:"image"`
	Description    string         `json:"description"`
	Amenities      []string       `json:"amenities"`
	Status         PropertyStatus `json:"status"`
}

// PropertyPatch is a shallow partial update over the named fields. Nil
// fields are left untouched; a non-nil Amenities replaces the whole list.
type PropertyPatch struct {
	Title          *string         `json:"title,omitempty"`
	Location       *string         `json:"location,omitempty"`
	Type           *string         `json:"type,omitempty"`
	Price          *float64        `json:"price,omitempty"`
	TargetAmount   *float64        `json:"targetAmount,omitempty"`
	RaisedAmount   *float64        `json:"raisedAmount,omitempty"`
	Investors      *int            `json:"investors,omitempty"`
	ExpectedReturn *float64        `json:"expectedReturn,omitempty"`
	Tenure         *string         `json:"tenure,omitempty"`
	Image          *string         `json:"image,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Amenities      *[]string       `json:"amenities,omitempty"`
	Status         *PropertyStatus `json:"status,omitempty"`
}

// Apply merges the non-nil fields of p into prop.
func (p PropertyPatch) Apply(prop *Property) {
	if p.Title != nil {
		prop.Title = *p.Title
	}
	if p.Location != nil {
		prop.Location = *p.Location
	}
	if p.Type != nil {
		prop.Type = *p.Type
	}
	if p.Price != nil {
		prop.Price = *p.Price
	}
	if p.TargetAmount != nil {
		prop.TargetAmount = *p.TargetAmount
	}
	if p.RaisedAmount != nil {
		prop.RaisedAmount = *p.RaisedAmount
	}
	if p.Investors != nil {
		prop.Investors = *p.Investors
	}
	if p.ExpectedReturn != nil {
		prop.ExpectedReturn = *p.ExpectedReturn
	}
	if p.Tenure != nil {
		prop.Tenure = *p.Tenure
	}
	if p.Image != nil {
		prop.Image = *p.Image
	}
	if p.Description != nil {
		prop.Description = *p.Description
	}
	if p.Amenities != nil {
		prop.Amenities = slices.Clone(*p.Amenities)
	}
	if p.Status != nil {
		prop.Status = *p.Status
	}
}

// PropertyStats is the dashboard aggregate over the whole catalog.
type PropertyStats struct {
	TotalProperties int     `json:"totalProperties"`
	ActiveInvestors int     `json:"activeInvestors"`
	TotalInvestment float64 `json:"totalInvestment"`
	AvgReturns      float64 `json:"avgReturns"`
}

// MarshalJSON writes non-finite aggregates as null, like Property.
func (s PropertyStats) MarshalJSON() ([]byte, error) {
	type plain PropertyStats
	return json.Marshal(struct {
		plain
		TotalInvestment *float64 `json:"totalInvestment"`
		AvgReturns      *float64 `json:"avgReturns"`
	}{
		plain:           plain(s),
		TotalInvestment: finite(s.TotalInvestment),
		AvgReturns:      finite(s.AvgReturns),
	})
}

// finite returns nil for NaN and ±Inf, which JSON cannot represent.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
