package service

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/truassets/internal/apperror"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/query"
	"github.com/sakif/truassets/internal/repository"
)

// PropertyService exposes the catalog to the HTTP layer.
//
// Amounts are not range-checked here or in the store: negative values are
// accepted and flow into the statistics as-is.
type PropertyService struct {
	props  repository.Properties
	logger *slog.Logger
}

func NewPropertyService(props repository.Properties, logger *slog.Logger) *PropertyService {
	return &PropertyService{props: props, logger: logger}
}

// List returns the catalog narrowed by c, in store order.
func (s *PropertyService) List(c query.Criteria) []model.Property {
	return query.Filter(s.props.All(), c)
}

// Featured returns the filtered catalog projected into catalog cards.
func (s *PropertyService) Featured(c query.Criteria) []query.Featured {
	return query.FeatureAll(s.List(c))
}

func (s *PropertyService) Get(id string) (model.Property, error) {
	p, ok := s.props.Get(id)
	if !ok {
		return model.Property{}, apperror.NotFound("property", id)
	}
	return p, nil
}

// Create adds a property. Only the title is required.
func (s *PropertyService) Create(ctx context.Context, d model.PropertyDraft) (model.Property, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return model.Property{}, apperror.ValidationFailed("title", "property title is required")
	}
	if d.Status == "" {
		d.Status = model.PropertyActive
	}
	return s.props.Add(ctx, d), nil
}

func (s *PropertyService) Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Property{}, apperror.ValidationFailed("title", "property title cannot be empty")
	}
	p, ok := s.props.Update(ctx, id, patch)
	if !ok {
		return model.Property{}, apperror.NotFound("property", id)
	}
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if !s.props.Remove(ctx, id) {
		return apperror.NotFound("property", id)
	}
	return nil
}

func (s *PropertyService) Statistics() model.PropertyStats {
	return s.props.Statistics()
}

// requiredFormFields must be present (non-blank) in a submitted property form.
var requiredFormFields = []string{"title", "location", "price", "targetAmount", "expectedReturn", "tenure", "description"}

// ParsePropertyForm converts the admin "add property" form into a draft.
//
// Only presence of the required fields is checked. Numbers that do not parse,
// and NaN or Inf, become 0 and are stored as such. Defaults: type apartment,
// status active, raisedAmount and investors 0, image the placeholder.
// Amenities are a comma-separated list; blank items are dropped.
func ParsePropertyForm(form url.Values) (model.PropertyDraft, error) {
	for _, f := range requiredFormFields {
		if strings.TrimSpace(form.Get(f)) == "" {
			return model.PropertyDraft{}, apperror.ValidationFailed(f, f+" is required")
		}
	}

	d := model.PropertyDraft{
		Title:          strings.TrimSpace(form.Get("title")),
		Location:       strings.TrimSpace(form.Get("location")),
		Type:           withDefault(form.Get("type"), "apartment"),
		Price:          parseFloat(form.Get("price")),
		TargetAmount:   parseFloat(form.Get("targetAmount")),
		RaisedAmount:   parseFloat(form.Get("raisedAmount")),
		Investors:      parseInt(form.Get("investors")),
		ExpectedReturn: parseFloat(form.Get("expectedReturn")),
		Tenure:         form.Get("tenure"),
		Image:          withDefault(form.Get("image"), model.PlaceholderImage),
		Description:    form.Get("description"),
		Amenities:      splitAmenities(form.Get("amenities")),
		Status:         model.PropertyStatus(withDefault(form.Get("status"), string(model.PropertyActive))),
	}
	return d, nil
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func splitAmenities(v string) []string {
	out := []string{}
	for _, a := range strings.Split(v, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
