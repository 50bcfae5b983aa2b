package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message types accepted by the API.
var MessageTypes = []string{"inquiry", "callback_request", "general"}

type ContactPreferences struct {
	Phone    bool `bson:"phone" json:"phone"`
	Email    bool `bson:"email" json:"email"`
	Whatsapp bool `bson:"whatsapp" json:"whatsapp"`
}

type SenderContact struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,len=10,numeric"`
	Email string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
}

type Message struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender             primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver           primitive.ObjectID `bson:"receiver" json:"receiver"`
	Property           primitive.ObjectID `bson:"property" json:"property"`
	SenderInfo         *ContactSummary    `bson:"-" json:"senderInfo,omitempty"`
	ReceiverInfo       *ContactSummary    `bson:"-" json:"receiverInfo,omitempty"`
	PropertyInfo       *PropertySummary   `bson:"-" json:"propertyInfo,omitempty"`
	Subject            string             `bson:"subject" json:"subject" validate:"required,min=5,max=100"`
	Content            string             `bson:"content" json:"content" validate:"required,min=10,max=1000"`
	MessageType        string             `bson:"messageType" json:"messageType" validate:"oneof=inquiry callback_request general"`
	IsRead             bool               `bson:"isRead" json:"isRead"`
	IsArchived         bool               `bson:"isArchived" json:"isArchived"`
	ReadAt             *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	ContactPreferences ContactPreferences `bson:"contactPreferences" json:"contactPreferences"`
	SenderContact      SenderContact      `bson:"senderContact" json:"senderContact"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ApplySenderContactPreferences clears contact channels the sender did not
// opt into before the message is persisted. The name is kept regardless of
// the preference flags.
func (m *Message) ApplySenderContactPreferences() {
	if !m.ContactPreferences.Phone {
		m.SenderContact.Phone = ""
	}
	if !m.ContactPreferences.Email {
		m.SenderContact.Email = ""
	}
}

// InvolvesUser reports whether id is the sender or the receiver.
func (m *Message) InvolvesUser(id primitive.ObjectID) bool {
	return m.Sender == id || m.Receiver == id
}

// ShouldMarkRead reports whether a read by caller stamps the message. Only
// the receiver's first read does; later reads leave readAt untouched.
func (m *Message) ShouldMarkRead(caller primitive.ObjectID) bool {
	return m.Receiver == caller && !m.IsRead
}

// ShouldArchive reports whether an archive request changes state.
func (m *Message) ShouldArchive() bool {
	return !m.IsArchived
}
