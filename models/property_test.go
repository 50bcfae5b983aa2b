package models

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetDefaults(t *testing.T) {
	var p Property
	p.SetDefaults()

	if !p.IsAvailable || !p.ShowOnMap {
		t.Error("new properties default to available and map-visible")
	}
	if p.RentType != "monthly" {
		t.Errorf("expected monthly rent type, got %q", p.RentType)
	}
	if !p.ContactInfo.ShowPhone || p.ContactInfo.ShowEmail {
		t.Errorf("expected showPhone=true showEmail=false, got %+v", p.ContactInfo)
	}
	if p.IsVerified {
		t.Error("new properties must not default to verified")
	}
}

func TestSetDefaultsOverridableByPayload(t *testing.T) {
	var p Property
	p.SetDefaults()
	if err := json.Unmarshal([]byte(`{"showOnMap":false,"rentType":"yearly"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.ShowOnMap {
		t.Error("payload value must override the showOnMap default")
	}
	if p.RentType != "yearly" {
		t.Errorf("payload value must override the rentType default, got %q", p.RentType)
	}
	if !p.IsAvailable {
		t.Error("absent fields must keep their defaults")
	}
}

func TestPublicViewWithholdsSensitiveFields(t *testing.T) {
	lat, lng := 18.52, 73.85
	p := Property{
		ID:           primitive.NewObjectID(),
		Title:        "Sunny 2BHK near station",
		PropertyType: "flat",
		Rent:         15000,
		Location: Location{
			City:        "Pune",
			Area:        "Kothrud",
			PinCode:     "411038",
			Address:     "12 Paud Road",
			Coordinates: &Coordinates{Latitude: &lat, Longitude: &lng},
		},
		Facilities:  Facilities{Wifi: true},
		ContactInfo: ContactInfo{ShowPhone: true},
		Views:       7,
		CreatedAt:   time.Now(),
	}

	teaser := p.PublicView(&PublicOwner{Name: "Ravi", Role: "homeowner"})
	raw, err := json.Marshal(teaser)
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	for _, forbidden := range []string{"rent", "facilities", "contactInfo", "propertyDetails"} {
		if _, present := fields[forbidden]; present {
			t.Errorf("public view must not expose %s", forbidden)
		}
	}

	loc, ok := fields["location"].(map[string]interface{})
	if !ok {
		t.Fatal("public view must keep a location object")
	}
	if loc["city"] != "Pune" {
		t.Errorf("expected city in public location, got %+v", loc)
	}
	for _, forbidden := range []string{"address", "pinCode", "coordinates", "area"} {
		if _, present := loc[forbidden]; present {
			t.Errorf("public location must not expose %s", forbidden)
		}
	}

	if teaser.Views != 7 || teaser.Title != p.Title {
		t.Error("public view must keep title and views")
	}
}

func TestMapViewKeepsCoordinatesAndRent(t *testing.T) {
	lat, lng := 18.52, 73.85
	p := Property{
		ID:           primitive.NewObjectID(),
		Title:        "Sunny 2BHK near station",
		Rent:         15000,
		PropertyType: "flat",
		Location: Location{
			City:        "Pune",
			Area:        "Kothrud",
			PinCode:     "411038",
			Address:     "12 Paud Road",
			Coordinates: &Coordinates{Latitude: &lat, Longitude: &lng},
		},
	}

	pin := p.MapView()
	if pin.Rent != 15000 {
		t.Error("map view keeps rent for pin labels")
	}
	if pin.Location.Coordinates == nil || *pin.Location.Coordinates.Latitude != lat {
		t.Error("map view must carry coordinates")
	}

	raw, err := json.Marshal(pin)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	loc := fields["location"].(map[string]interface{})
	for _, forbidden := range []string{"address", "pinCode"} {
		if _, present := loc[forbidden]; present {
			t.Errorf("map location must not expose %s", forbidden)
		}
	}
}

func TestOwnedBy(t *testing.T) {
	owner := primitive.NewObjectID()
	p := Property{Owner: owner}

	if !p.OwnedBy(owner) {
		t.Error("the owner must be recognized")
	}
	if p.OwnedBy(primitive.NewObjectID()) {
		t.Error("other users must not pass the ownership check")
	}
}

func TestFacilityKeys(t *testing.T) {
	keys := FacilityKeys()
	if len(keys) != 12 {
		t.Fatalf("expected 12 facility flags, got %d", len(keys))
	}
	for _, k := range keys {
		if !IsFacilityKey(k) {
			t.Errorf("%s should be a known facility key", k)
		}
	}
	if IsFacilityKey("helipad") {
		t.Error("unknown keys must be rejected")
	}

	// Callers must not be able to mutate the schema list.
	keys[0] = "tampered"
	if FacilityKeys()[0] != "wifi" {
		t.Error("FacilityKeys must return a copy")
	}
}
