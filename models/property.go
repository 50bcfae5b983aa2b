package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Property types and rent types accepted by the API.
var (
	PropertyTypes = []string{"PG", "house", "flat"}
	RentTypes     = []string{"monthly", "yearly"}
)

type Coordinates struct {
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

type Location struct {
	City        string       `bson:"city" json:"city" validate:"required"`
	Area        string       `bson:"area" json:"area" validate:"required"`
	PinCode     string       `bson:"pinCode" json:"pinCode" validate:"required,len=6,numeric"`
	Address     string       `bson:"address" json:"address" validate:"required"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

type Facilities struct {
	Wifi        bool `bson:"wifi" json:"wifi"`
	Parking     bool `bson:"parking" json:"parking"`
	AC          bool `bson:"ac" json:"ac"`
	Kitchen     bool `bson:"kitchen" json:"kitchen"`
	Laundry     bool `bson:"laundry" json:"laundry"`
	Security    bool `bson:"security" json:"security"`
	Gym         bool `bson:"gym" json:"gym"`
	Pool        bool `bson:"pool" json:"pool"`
	Garden      bool `bson:"garden" json:"garden"`
	Balcony     bool `bson:"balcony" json:"balcony"`
	Furnished   bool `bson:"furnished" json:"furnished"`
	PetFriendly bool `bson:"petFriendly" json:"petFriendly"`
}

var facilityKeys = []string{
	"wifi", "parking", "ac", "kitchen", "laundry", "security",
	"gym", "pool", "garden", "balcony", "furnished", "petFriendly",
}

// FacilityKeys returns the filterable facility flag names in schema order.
func FacilityKeys() []string {
	out := make([]string, len(facilityKeys))
	copy(out, facilityKeys)
	return out
}

// IsFacilityKey reports whether name is a known facility flag. Filter
// building only touches known keys, so query values cannot smuggle arbitrary
// field paths into a Mongo query.
func IsFacilityKey(name string) bool {
	for _, k := range facilityKeys {
		if k == name {
			return true
		}
	}
	return false
}

type PropertyDetails struct {
	Bedrooms    int `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms   int `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	Area        int `bson:"area" json:"area" validate:"gte=0"`
	Floor       int `bson:"floor" json:"floor" validate:"gte=0"`
	TotalFloors int `bson:"totalFloors" json:"totalFloors" validate:"gte=0"`
}

type Image struct {
	URL     string `bson:"url" json:"url" validate:"required"`
	Caption string `bson:"caption" json:"caption"`
}

type ContactInfo struct {
	ShowPhone bool `bson:"showPhone" json:"showPhone"`
	ShowEmail bool `bson:"showEmail" json:"showEmail"`
}

type Property struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner           primitive.ObjectID `bson:"owner" json:"owner"`
	OwnerInfo       *UserSummary       `bson:"-" json:"ownerInfo,omitempty"`
	Title           string             `bson:"title" json:"title" validate:"required,min=5,max=100"`
	Description     string             `bson:"description" json:"description" validate:"required,min=20,max=1000"`
	PropertyType    string             `bson:"propertyType" json:"propertyType" validate:"required,oneof=PG house flat"`
	Rent            float64            `bson:"rent" json:"rent" validate:"gte=0"`
	RentType        string             `bson:"rentType" json:"rentType" validate:"oneof=monthly yearly"`
	Location        Location           `bson:"location" json:"location"`
	Facilities      Facilities         `bson:"facilities" json:"facilities"`
	PropertyDetails PropertyDetails    `bson:"propertyDetails" json:"propertyDetails"`
	Images          []Image            `bson:"images" json:"images"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	IsVerified      bool               `bson:"isVerified" json:"isVerified"`
	ShowOnMap       bool               `bson:"showOnMap" json:"showOnMap"`
	Views           int64              `bson:"views" json:"views"`
	ContactInfo     ContactInfo        `bson:"contactInfo" json:"contactInfo"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether id owns the property. Owners may mutate their
// records but may not message themselves about them.
func (p *Property) OwnedBy(id primitive.ObjectID) bool {
	return p.Owner == id
}

// SetDefaults fills schema defaults before a create payload is decoded over
// the struct, so absent fields keep their defaults and supplied fields win.
func (p *Property) SetDefaults() {
	p.RentType = "monthly"
	p.IsAvailable = true
	p.ShowOnMap = true
	p.ContactInfo = ContactInfo{ShowPhone: true, ShowEmail: false}
}

// PublicOwner is the owner subset exposed to unauthenticated callers.
type PublicOwner struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
	Role string             `bson:"role" json:"role"`
}

// PublicLocation hides everything below city level.
type PublicLocation struct {
	City string `json:"city"`
}

// PublicProperty is the teaser view: no rent, address, facilities, details,
// or contact info. The full surface requires authentication.
type PublicProperty struct {
	ID           primitive.ObjectID `json:"_id"`
	Title        string             `json:"title"`
	PropertyType string             `json:"propertyType"`
	Location     PublicLocation     `json:"location"`
	Images       []Image            `json:"images"`
	Owner        *PublicOwner       `json:"owner,omitempty"`
	Views        int64              `json:"views"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// PublicView projects a property down to the teaser field set.
func (p *Property) PublicView(owner *PublicOwner) PublicProperty {
	return PublicProperty{
		ID:           p.ID,
		Title:        p.Title,
		PropertyType: p.PropertyType,
		Location:     PublicLocation{City: p.Location.City},
		Images:       p.Images,
		Owner:        owner,
		Views:        p.Views,
		CreatedAt:    p.CreatedAt,
	}
}

// MapLocation keeps just enough to place a pin.
type MapLocation struct {
	City        string       `json:"city"`
	Area        string       `json:"area"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// MapProperty is the reduced record served to the map view.
type MapProperty struct {
	ID           primitive.ObjectID `json:"_id"`
	Title        string             `json:"title"`
	Rent         float64            `json:"rent"`
	PropertyType string             `json:"propertyType"`
	Location     MapLocation        `json:"location"`
	Images       []Image            `json:"images"`
}

// MapView projects a property down to the map field set.
func (p *Property) MapView() MapProperty {
	return MapProperty{
		ID:           p.ID,
		Title:        p.Title,
		Rent:         p.Rent,
		PropertyType: p.PropertyType,
		Location: MapLocation{
			City:        p.Location.City,
			Area:        p.Location.Area,
			Coordinates: p.Location.Coordinates,
		},
		Images: p.Images,
	}
}

// PropertySummary is the property subset attached to messages.
type PropertySummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Title    string             `bson:"title" json:"title"`
	Location Location           `bson:"location" json:"location"`
	Images   []Image            `bson:"images" json:"images"`
}
