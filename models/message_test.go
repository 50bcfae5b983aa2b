package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplySenderContactPreferences(t *testing.T) {
	tests := []struct {
		name      string
		prefs     ContactPreferences
		wantPhone string
		wantEmail string
	}{
		{"no consent", ContactPreferences{}, "", ""},
		{"phone only", ContactPreferences{Phone: true}, "9876543210", ""},
		{"email only", ContactPreferences{Email: true}, "", "a@b.com"},
		{"both", ContactPreferences{Phone: true, Email: true}, "9876543210", "a@b.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{
				ContactPreferences: tt.prefs,
				SenderContact: SenderContact{
					Name:  "Asha",
					Phone: "9876543210",
					Email: "a@b.com",
				},
			}
			m.ApplySenderContactPreferences()

			if m.SenderContact.Phone != tt.wantPhone {
				t.Errorf("phone: got %q, want %q", m.SenderContact.Phone, tt.wantPhone)
			}
			if m.SenderContact.Email != tt.wantEmail {
				t.Errorf("email: got %q, want %q", m.SenderContact.Email, tt.wantEmail)
			}
			if m.SenderContact.Name != "Asha" {
				t.Errorf("name must survive regardless of preferences, got %q", m.SenderContact.Name)
			}
		})
	}
}

func TestApplySenderContactPreferencesIdempotent(t *testing.T) {
	m := Message{
		ContactPreferences: ContactPreferences{Phone: true},
		SenderContact:      SenderContact{Phone: "9876543210", Email: "a@b.com"},
	}
	m.ApplySenderContactPreferences()
	m.ApplySenderContactPreferences()

	if m.SenderContact.Phone != "9876543210" || m.SenderContact.Email != "" {
		t.Errorf("unexpected contact after repeated application: %+v", m.SenderContact)
	}
}

func TestShouldMarkRead(t *testing.T) {
	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()
	m := Message{Sender: sender, Receiver: receiver}

	if !m.ShouldMarkRead(receiver) {
		t.Error("the receiver's first read must mark the message")
	}
	if m.ShouldMarkRead(sender) {
		t.Error("a read by the sender must not mark the message")
	}

	m.IsRead = true
	if m.ShouldMarkRead(receiver) {
		t.Error("a repeat read must be a no-op")
	}
}

func TestShouldArchive(t *testing.T) {
	var m Message
	if !m.ShouldArchive() {
		t.Error("an unarchived message must accept an archive request")
	}
	m.IsArchived = true
	if m.ShouldArchive() {
		t.Error("archiving an archived message must be a no-op")
	}
}
