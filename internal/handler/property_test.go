package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/truassets/internal/handler"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/query"
)

func seedCatalog(t *testing.T, app *testApp) (skyline, palm model.Property) {
	t.Helper()
	ctx := t.Context()
	palm = app.props.Add(ctx, model.PropertyDraft{
		Title: "Palm Villas", Location: "Pune, MH", Type: "villa",
		Price: 4800000, TargetAmount: 48000000, RaisedAmount: 12000000, Investors: 3,
		ExpectedReturn: 11, Status: model.PropertyActive,
	})
	skyline = app.props.Add(ctx, model.PropertyDraft{
		Title: "Skyline Heights", Location: "Mumbai, MH", Type: "apartment",
		Price: 900000, TargetAmount: 9000000, RaisedAmount: 9000000, Investors: 10,
		ExpectedReturn: 12, Status: model.PropertyFunded,
	})
	return skyline, palm
}

func TestPropertyHandler_List(t *testing.T) {
	app := newTestApp(t)
	seedCatalog(t, app)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all, newest first", "", []string{"Skyline Heights", "Palm Villas"}},
		{"search by city", "?search=mumbai", []string{"Skyline Heights"}},
		{"type filter", "?type=villa", []string{"Palm Villas"}},
		{"type none", "?type=none", []string{"Skyline Heights", "Palm Villas"}},
		{"budget bucket", "?budget=0-10L", []string{"Skyline Heights"}},
		{"unknown bucket keeps all", "?budget=cheap", []string{"Skyline Heights", "Palm Villas"}},
		{"no match", "?search=delhi", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.do(http.MethodGet, "/api/properties"+tt.query, nil, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			got := []string{}
			for _, p := range decode[[]model.Property](t, rr) {
				got = append(got, p.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyHandler_FeaturedAndStats(t *testing.T) {
	app := newTestApp(t)
	seedCatalog(t, app)

	rr := app.do(http.MethodGet, "/api/properties/featured?type=villa", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cards := decode[[]query.Featured](t, rr)
	require.Len(t, cards, 1)
	assert.Equal(t, "3/10", cards[0].AvailableUnits)
	assert.Equal(t, "Available", cards[0].Status)

	rr = app.do(http.MethodGet, "/api/properties/stats", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.PropertyStats{
		TotalProperties: 2, ActiveInvestors: 13, TotalInvestment: 21000000, AvgReturns: 11.5,
	}, decode[model.PropertyStats](t, rr))
}

func TestPropertyHandler_Get(t *testing.T) {
	app := newTestApp(t)
	skyline, _ := seedCatalog(t, app)

	rr := app.do(http.MethodGet, "/api/properties/"+skyline.ID, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, skyline.Title, decode[model.Property](t, rr).Title)

	rr = app.do(http.MethodGet, "/api/properties/prop-missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
}

func TestPropertyHandler_AdminOnly(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodPost, "/api/admin/properties", model.PropertyDraft{Title: "X"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	devLogin := app.do(http.MethodPost, "/auth/dev/login", nil, nil)
	rr = app.do(http.MethodPost, "/api/admin/properties", model.PropertyDraft{Title: "X"}, tokenCookie(t, devLogin))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, app.props.All())
}

func TestPropertyHandler_CreateJSON(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAdmin(t)

	rr := app.do(http.MethodPost, "/api/admin/properties", model.PropertyDraft{
		Title: "Lake View", Location: "Bhopal, MP", Type: "plot", Price: 500000,
	}, cookie)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decode[model.Property](t, rr)
	assert.True(t, strings.HasPrefix(p.ID, "prop-"))
	assert.Equal(t, model.PlaceholderImage, p.Image)
	assert.Equal(t, model.PropertyActive, p.Status)
	assert.Contains(t, app.kv.Snapshot(), "properties")
}

func TestPropertyHandler_CreateForm(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAdmin(t)
	form := url.Values{
		"title": {"Green Acres"}, "location": {"Nashik, MH"}, "price": {"250000"},
		"targetAmount": {"oops"}, "expectedReturn": {"9.5"}, "tenure": {"3 years"},
		"description": {"Farm plots"}, "amenities": {"Well, Fencing"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/properties", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()

	app.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decode[model.Property](t, rr)
	assert.Equal(t, "apartment", p.Type)
	assert.Zero(t, p.TargetAmount)
	assert.Equal(t, []string{"Well", "Fencing"}, p.Amenities)
}

func TestPropertyHandler_CreateFormMissingField(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAdmin(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/properties", strings.NewReader("title=Only"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()

	app.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "location", decode[handler.ErrorResponse](t, rr).Field)
}

func TestPropertyHandler_UpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	skyline, _ := seedCatalog(t, app)
	cookie := app.loginAdmin(t)

	rr := app.do(http.MethodPatch, "/api/admin/properties/"+skyline.ID, map[string]any{"raisedAmount": 100}, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[model.Property](t, rr)
	assert.Equal(t, 100.0, updated.RaisedAmount)
	assert.Equal(t, skyline.Title, updated.Title, "absent fields stay")

	rr = app.do(http.MethodPatch, "/api/admin/properties/"+skyline.ID, map[string]any{"nope": 1}, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = app.do(http.MethodPatch, "/api/admin/properties/prop-missing", map[string]any{"raisedAmount": 1}, cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(http.MethodDelete, "/api/admin/properties/"+skyline.ID, nil, cookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = app.do(http.MethodDelete, "/api/admin/properties/"+skyline.ID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
