package controllers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nestconnect/backend/models"
)

// Listing defaults and caps.
const (
	DefaultListingLimit  = 12
	DefaultMessagesLimit = 20
	FeaturedLimit        = 6
	MapResultCap         = 100
)

// PropertyQuery is the parsed, validated form of the listing filter
// parameters. Building it is separated from the handlers so the translation
// into a Mongo filter can be exercised without a database.
type PropertyQuery struct {
	City         string
	Area         string
	PinCode      string
	PropertyType string
	MinRent      *float64
	MaxRent      *float64
	Facilities   []string
	Page         int64
	Limit        int64
	SortBy       string
	SortOrder    string
}

// ParsePropertyQuery validates the raw query parameters and returns either
// the parsed query or the per-field failure list. withFacilities is false
// for the public listing, which does not expose the facilities filter.
func ParsePropertyQuery(values url.Values, defaultLimit int64, withFacilities bool) (*PropertyQuery, []models.FieldError) {
	q := &PropertyQuery{
		City:         strings.TrimSpace(values.Get("city")),
		Area:         strings.TrimSpace(values.Get("area")),
		PinCode:      strings.TrimSpace(values.Get("pinCode")),
		PropertyType: strings.TrimSpace(values.Get("propertyType")),
		Page:         1,
		Limit:        defaultLimit,
		SortBy:       "createdAt",
		SortOrder:    "desc",
	}
	var errs []models.FieldError

	if q.PropertyType != "" && !contains(models.PropertyTypes, q.PropertyType) {
		errs = append(errs, models.FieldError{Field: "propertyType", Message: "propertyType must be PG, house, or flat"})
	}

	q.MinRent, errs = parseOptionalNumber(values, "minRent", errs)
	q.MaxRent, errs = parseOptionalNumber(values, "maxRent", errs)

	if withFacilities {
		if raw := values.Get("facilities"); raw != "" {
			for _, f := range strings.Split(raw, ",") {
				f = strings.TrimSpace(f)
				if f == "" {
					continue
				}
				if !models.IsFacilityKey(f) {
					errs = append(errs, models.FieldError{Field: "facilities", Message: fmt.Sprintf("Unknown facility: %s", f)})
					continue
				}
				q.Facilities = append(q.Facilities, f)
			}
		}
	}

	q.Page, errs = parsePositiveInt(values, "page", q.Page, errs)
	q.Limit, errs = parsePositiveInt(values, "limit", q.Limit, errs)

	if v := values.Get("sortBy"); v != "" {
		if v != "rent" && v != "createdAt" && v != "views" {
			errs = append(errs, models.FieldError{Field: "sortBy", Message: "sortBy must be rent, createdAt, or views"})
		} else {
			q.SortBy = v
		}
	}
	if v := values.Get("sortOrder"); v != "" {
		if v != "asc" && v != "desc" {
			errs = append(errs, models.FieldError{Field: "sortOrder", Message: "sortOrder must be asc or desc"})
		} else {
			q.SortOrder = v
		}
	}

	if errs != nil {
		return nil, errs
	}
	return q, nil
}

// Filter translates the query into a Mongo filter. Listing reads only ever
// see available properties.
func (q *PropertyQuery) Filter() bson.M {
	filter := bson.M{"isAvailable": true}

	if q.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.City), Options: "i"}
	}
	if q.Area != "" {
		filter["location.area"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Area), Options: "i"}
	}
	if q.PinCode != "" {
		filter["location.pinCode"] = q.PinCode
	}
	if q.PropertyType != "" {
		filter["propertyType"] = q.PropertyType
	}

	rent := bson.M{}
	if q.MinRent != nil {
		rent["$gte"] = *q.MinRent
	}
	if q.MaxRent != nil {
		rent["$lte"] = *q.MaxRent
	}
	if len(rent) > 0 {
		filter["rent"] = rent
	}

	for _, f := range q.Facilities {
		filter["facilities."+f] = true
	}
	return filter
}

func (q *PropertyQuery) Sort() bson.D {
	dir := -1
	if q.SortOrder == "asc" {
		dir = 1
	}
	return bson.D{{Key: q.SortBy, Value: dir}}
}

func (q *PropertyQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

// Bounds is a geographic bounding box, south-west corner first.
type Bounds struct {
	SwLat, SwLng, NeLat, NeLng float64
}

// MapQuery is the parsed filter for the map view.
type MapQuery struct {
	City   string
	Bounds *Bounds
}

func ParseMapQuery(values url.Values) (*MapQuery, []models.FieldError) {
	q := &MapQuery{City: strings.TrimSpace(values.Get("city"))}
	var errs []models.FieldError

	if raw := values.Get("bounds"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) != 4 {
			errs = append(errs, models.FieldError{Field: "bounds", Message: "bounds must be swLat,swLng,neLat,neLng"})
		} else {
			nums := make([]float64, 4)
			ok := true
			for i, p := range parts {
				n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					ok = false
					break
				}
				nums[i] = n
			}
			if !ok {
				errs = append(errs, models.FieldError{Field: "bounds", Message: "bounds must contain four numbers"})
			} else {
				q.Bounds = &Bounds{SwLat: nums[0], SwLng: nums[1], NeLat: nums[2], NeLng: nums[3]}
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return q, nil
}

// Filter restricts to available, map-visible properties with both
// coordinates present, optionally inside the bounding box.
func (q *MapQuery) Filter() bson.M {
	filter := bson.M{
		"isAvailable":                    true,
		"showOnMap":                      true,
		"location.coordinates.latitude":  bson.M{"$exists": true, "$ne": nil},
		"location.coordinates.longitude": bson.M{"$exists": true, "$ne": nil},
	}
	if q.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.City), Options: "i"}
	}
	if b := q.Bounds; b != nil {
		filter["location.coordinates.latitude"] = bson.M{"$gte": b.SwLat, "$lte": b.NeLat}
		filter["location.coordinates.longitude"] = bson.M{"$gte": b.SwLng, "$lte": b.NeLng}
	}
	return filter
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func parseOptionalNumber(values url.Values, key string, errs []models.FieldError) (*float64, []models.FieldError) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, errs
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, append(errs, models.FieldError{Field: key, Message: fmt.Sprintf("%s must be a number", key)})
	}
	return &n, errs
}

func parsePositiveInt(values url.Values, key string, def int64, errs []models.FieldError) (int64, []models.FieldError) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, errs
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def, append(errs, models.FieldError{Field: key, Message: fmt.Sprintf("%s must be a positive integer", key)})
	}
	return n, errs
}
