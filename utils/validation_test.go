package utils

import (
	"strings"
	"testing"

	"github.com/nestconnect/backend/models"
)

func validProperty() models.Property {
	p := models.Property{
		Title:        "Sunny 2BHK near station",
		Description:  "Bright two-bedroom flat close to the railway station.",
		PropertyType: "flat",
		Rent:         15000,
		Location: models.Location{
			City:    "Pune",
			Area:    "Kothrud",
			PinCode: "411038",
			Address: "12 Paud Road",
		},
	}
	p.SetDefaults()
	return p
}

func TestValidatePropertyOK(t *testing.T) {
	if errs := ValidateStruct(validProperty()); errs != nil {
		t.Fatalf("expected valid property, got %+v", errs)
	}
}

func TestValidatePropertyPinCode(t *testing.T) {
	for _, pin := range []string{"12345", "1234567", "41103a", ""} {
		p := validProperty()
		p.Location.PinCode = pin
		errs := ValidateStruct(p)
		if errs == nil {
			t.Fatalf("pin %q must be rejected", pin)
		}
		found := false
		for _, fe := range errs {
			if fe.Field == "location.pinCode" {
				found = true
			}
		}
		if !found {
			t.Errorf("pin %q: expected a location.pinCode error, got %+v", pin, errs)
		}
	}
}

func TestValidatePropertyBounds(t *testing.T) {
	p := validProperty()
	p.Title = "tiny"
	p.Rent = -1
	p.PropertyType = "castle"

	errs := ValidateStruct(p)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	fields := make(map[string]string)
	for _, fe := range errs {
		fields[fe.Field] = fe.Message
	}
	if _, ok := fields["title"]; !ok {
		t.Errorf("expected a title error, got %+v", errs)
	}
	if msg, ok := fields["rent"]; !ok || !strings.Contains(msg, "negative") {
		t.Errorf("expected a rent negativity error, got %+v", errs)
	}
	if _, ok := fields["propertyType"]; !ok {
		t.Errorf("expected a propertyType error, got %+v", errs)
	}
}

func TestValidateMessage(t *testing.T) {
	m := models.Message{
		Subject:     "Is this available?",
		Content:     "I would like to schedule a visit this weekend.",
		MessageType: "inquiry",
	}
	if errs := ValidateStruct(m); errs != nil {
		t.Fatalf("expected valid message, got %+v", errs)
	}

	m.Subject = "hi"
	m.MessageType = "telegram"
	m.SenderContact.Phone = "123"
	errs := ValidateStruct(m)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	fields := make(map[string]bool)
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	for _, f := range []string{"subject", "messageType", "senderContact.phone"} {
		if !fields[f] {
			t.Errorf("expected an error for %s, got %+v", f, errs)
		}
	}
}

func TestValidateUser(t *testing.T) {
	u := models.User{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret1",
		Phone:    "9876543210",
		Role:     "tenant",
	}
	if errs := ValidateStruct(u); errs != nil {
		t.Fatalf("expected valid user, got %+v", errs)
	}

	u.Role = "admin"
	u.Email = "not-an-email"
	errs := ValidateStruct(u)
	if errs == nil {
		t.Fatal("expected validation errors")
	}
	fields := make(map[string]bool)
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	if !fields["role"] || !fields["email"] {
		t.Errorf("expected role and email errors, got %+v", errs)
	}
}
