package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestconnect/backend/config"
	"github.com/nestconnect/backend/models"
	"github.com/nestconnect/backend/utils"
)

type AuthResponse struct {
	Message string              `json:"message"`
	Token   string              `json:"token,omitempty"`
	User    *models.UserSummary `json:"user,omitempty"`
}

func RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			log.Printf("Error decoding user data: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		user.Email = strings.ToLower(strings.TrimSpace(user.Email))

		if errs := utils.ValidateStruct(user); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		exists := config.UserCollection.FindOne(context.TODO(), bson.M{"email": user.Email})
		if exists.Err() == nil {
			log.Printf("User email already exists: %s", user.Email)
			writeError(w, http.StatusConflict, "Email already exists")
			return
		}

		hashedPwd, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
		user.Password = hashedPwd
		user.CreatedAt = time.Now()

		_, err = config.UserCollection.InsertOne(context.TODO(), user)
		if err != nil {
			// Two registrations can race past the lookup above; the unique
			// email index catches the loser here.
			if isDuplicateEmail(err) {
				log.Printf("User email already exists: %s", user.Email)
				writeError(w, http.StatusConflict, "Email already exists")
				return
			}
			log.Printf("Error inserting user into the database: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{Message: "User registered successfully"})
	}
}

func isDuplicateEmail(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Printf("Error decoding login credentials: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		credentials.Email = strings.ToLower(strings.TrimSpace(credentials.Email))

		var dbUser models.User
		err := config.UserCollection.FindOne(context.TODO(), bson.M{"email": credentials.Email}).Decode(&dbUser)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Printf("Error looking up user %s: %v", credentials.Email, err)
			}
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if !utils.CheckPasswordHash(credentials.Password, dbUser.Password) {
			log.Printf("Invalid credentials for user: %s", credentials.Email)
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := utils.GenerateJWT(dbUser.ID.Hex(), dbUser.Role)
		if err != nil {
			log.Printf("Error generating JWT token: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		summary := dbUser.Summary()
		writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", Token: token, User: &summary})
	}
}
