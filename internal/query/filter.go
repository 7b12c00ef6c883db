// Package query derives read-only views from a property snapshot: the
// catalog filter, admin reports, the CSV export and analytics.
//
// Every function is pure. Inputs are never mutated and results are fresh
// slices in source order.
package query

import (
	"math"
	"strings"

	"github.com/sakif/truassets/internal/model"
)

// Any is the sentinel that disables the type and budget predicates.
const Any = "none"

// Lakh and Crore are the Indian numbering units used by budgets and display.
const (
	Lakh  = 100_000
	Crore = 10_000_000
)

// Bucket is a half-open price interval [Min, Max).
type Bucket struct {
	Name string
	Min  float64
	Max  float64
}

// Contains reports whether price falls in the bucket.
func (b Bucket) Contains(price float64) bool {
	return price >= b.Min && price < b.Max
}

// Buckets are the budget ranges offered by the catalog filter, in display
// order.
var Buckets = []Bucket{
	{Name: "0-10L", Min: 0, Max: 10 * Lakh},
	{Name: "10L-25L", Min: 10 * Lakh, Max: 25 * Lakh},
	{Name: "25L-50L", Min: 25 * Lakh, Max: 50 * Lakh},
	{Name: "50L-1Cr", Min: 50 * Lakh, Max: Crore},
	{Name: "1Cr+", Min: Crore, Max: math.Inf(1)},
}

// LookupBucket returns the bucket with the given name.
func LookupBucket(name string) (Bucket, bool) {
	for _, b := range Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// Criteria selects properties for the public catalog. Empty fields, and the
// Any sentinel for PropertyType and Budget, match everything.
type Criteria struct {
	SearchTerm   string
	PropertyType string
	Budget       string
}

// Filter returns the properties matching all of c's predicates:
//
//   - SearchTerm: case-insensitive substring of the title, the full location
//     or the city (location up to the first comma)
//   - PropertyType: exact match on Type
//   - Budget: the raw Price falls inside the named bucket; an unrecognised
//     bucket name matches everything
func Filter(properties []model.Property, c Criteria) []model.Property {
	term := strings.ToLower(c.SearchTerm)
	bucket, hasBucket := LookupBucket(c.Budget)

	out := make([]model.Property, 0, len(properties))
	for _, p := range properties {
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		if c.PropertyType != "" && c.PropertyType != Any && p.Type != c.PropertyType {
			continue
		}
		if hasBucket && !bucket.Contains(p.Price) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

func matchesSearch(p model.Property, term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Location), term) ||
		strings.Contains(strings.ToLower(City(p.Location)), term)
}

// City returns the part of a "City, State" location before the first comma.
func City(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return city
}
