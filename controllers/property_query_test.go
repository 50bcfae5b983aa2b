package controllers

import (
	"net/url"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParsePropertyQueryDefaults(t *testing.T) {
	q, errs := ParsePropertyQuery(url.Values{}, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if q.Page != 1 || q.Limit != DefaultListingLimit {
		t.Errorf("expected page=1 limit=%d, got page=%d limit=%d", DefaultListingLimit, q.Page, q.Limit)
	}
	if q.SortBy != "createdAt" || q.SortOrder != "desc" {
		t.Errorf("expected createdAt/desc defaults, got %s/%s", q.SortBy, q.SortOrder)
	}
	if q.Skip() != 0 {
		t.Errorf("expected skip 0, got %d", q.Skip())
	}
}

func TestParsePropertyQueryInvalidFields(t *testing.T) {
	values := url.Values{}
	values.Set("propertyType", "castle")
	values.Set("minRent", "cheap")
	values.Set("page", "0")
	values.Set("sortBy", "rating")
	values.Set("sortOrder", "sideways")

	_, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	fields := make(map[string]bool)
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	for _, f := range []string{"propertyType", "minRent", "page", "sortBy", "sortOrder"} {
		if !fields[f] {
			t.Errorf("expected an error for %s, got %+v", f, errs)
		}
	}
}

func TestPropertyQueryRentRangeFilter(t *testing.T) {
	values := url.Values{}
	values.Set("minRent", "10000")
	values.Set("maxRent", "20000")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}

	filter := q.Filter()
	if filter["isAvailable"] != true {
		t.Error("listing filter must restrict to available properties")
	}
	rent, ok := filter["rent"].(bson.M)
	if !ok {
		t.Fatalf("expected rent range in filter, got %+v", filter)
	}
	if rent["$gte"] != 10000.0 || rent["$lte"] != 20000.0 {
		t.Errorf("expected closed range 10000..20000, got %+v", rent)
	}
}

func TestPropertyQueryCityRegexIsEscaped(t *testing.T) {
	values := url.Values{}
	values.Set("city", "Pune (West)")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}

	re, ok := q.Filter()["location.city"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected a regex filter on location.city")
	}
	if re.Options != "i" {
		t.Errorf("city match must be case-insensitive, got options %q", re.Options)
	}
	if re.Pattern == "Pune (West)" {
		t.Error("regex metacharacters in city input must be escaped")
	}
}

func TestPropertyQueryFacilitiesFilter(t *testing.T) {
	values := url.Values{}
	values.Set("facilities", "wifi, parking ,")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}

	filter := q.Filter()
	if filter["facilities.wifi"] != true || filter["facilities.parking"] != true {
		t.Errorf("expected facility equality filters, got %+v", filter)
	}

	values.Set("facilities", "wifi,helipad")
	if _, errs := ParsePropertyQuery(values, DefaultListingLimit, true); errs == nil {
		t.Error("expected an error for an unknown facility key")
	}
}

func TestPropertyQueryFacilitiesIgnoredForPublic(t *testing.T) {
	values := url.Values{}
	values.Set("facilities", "wifi")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, false)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(q.Facilities) != 0 {
		t.Errorf("public listing must not parse facilities, got %v", q.Facilities)
	}
}

func TestPropertyQueryPaginationWindow(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "5")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if q.Skip() != 10 {
		t.Errorf("expected skip 10 for page 3 limit 5, got %d", q.Skip())
	}
}

func TestPropertyQuerySort(t *testing.T) {
	values := url.Values{}
	values.Set("sortBy", "rent")
	values.Set("sortOrder", "asc")

	q, errs := ParsePropertyQuery(values, DefaultListingLimit, true)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	sort := q.Sort()
	if len(sort) != 1 || sort[0].Key != "rent" || sort[0].Value != 1 {
		t.Errorf("expected ascending rent sort, got %+v", sort)
	}
}

func TestParseMapQueryBounds(t *testing.T) {
	values := url.Values{}
	values.Set("bounds", "18.4,73.7,18.7,74.0")

	q, errs := ParseMapQuery(values)
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if q.Bounds == nil {
		t.Fatal("expected parsed bounds")
	}
	if q.Bounds.SwLat != 18.4 || q.Bounds.NeLng != 74.0 {
		t.Errorf("bounds parsed out of order: %+v", q.Bounds)
	}

	filter := q.Filter()
	lat, ok := filter["location.coordinates.latitude"].(bson.M)
	if !ok {
		t.Fatalf("expected latitude range, got %+v", filter)
	}
	if lat["$gte"] != 18.4 || lat["$lte"] != 18.7 {
		t.Errorf("expected latitude 18.4..18.7, got %+v", lat)
	}
	if filter["showOnMap"] != true {
		t.Error("map filter must require showOnMap")
	}
}

func TestParseMapQueryBadBounds(t *testing.T) {
	for _, raw := range []string{"1,2,3", "a,b,c,d"} {
		values := url.Values{}
		values.Set("bounds", raw)
		if _, errs := ParseMapQuery(values); errs == nil {
			t.Errorf("expected error for bounds %q", raw)
		}
	}
}

func TestMapQueryRequiresCoordinates(t *testing.T) {
	q, errs := ParseMapQuery(url.Values{})
	if errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	filter := q.Filter()
	for _, key := range []string{"location.coordinates.latitude", "location.coordinates.longitude"} {
		cond, ok := filter[key].(bson.M)
		if !ok {
			t.Fatalf("expected presence condition on %s", key)
		}
		if cond["$exists"] != true {
			t.Errorf("expected $exists on %s, got %+v", key, cond)
		}
	}
}
