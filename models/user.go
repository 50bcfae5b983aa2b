package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can register with.
var UserRoles = []string{"homeowner", "broker", "tenant"}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=2,max=50"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password" json:"password,omitempty" validate:"required,min=6"`
	Phone     string             `bson:"phone" json:"phone" validate:"required,len=10,numeric"`
	Role      string             `bson:"role" json:"role" validate:"required,oneof=homeowner broker tenant"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserSummary is what an authenticated caller sees of another user. Phone and
// email are present here; per-property ContactInfo flags decide whether the
// consuming UI may render them.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Phone string             `bson:"phone" json:"phone"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
}

// ContactSummary is the sender/receiver subset attached to messages.
type ContactSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Phone: u.Phone, Email: u.Email, Role: u.Role}
}

func (u *User) PublicSummary() PublicOwner {
	return PublicOwner{ID: u.ID, Name: u.Name, Role: u.Role}
}
