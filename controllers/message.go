package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestconnect/backend/config"
	"github.com/nestconnect/backend/models"
	"github.com/nestconnect/backend/utils"
)

type messageListResponse struct {
	Messages    []models.Message  `json:"messages"`
	Pagination  models.Pagination `json:"pagination"`
	UnreadCount int64             `json:"unreadCount"`
}

func SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		var payload struct {
			PropertyID         string                    `json:"propertyId"`
			Subject            string                    `json:"subject"`
			Content            string                    `json:"content"`
			MessageType        string                    `json:"messageType"`
			ContactPreferences models.ContactPreferences `json:"contactPreferences"`
			SenderContact      models.SenderContact      `json:"senderContact"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("Invalid message payload: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		if payload.MessageType == "" {
			payload.MessageType = "inquiry"
		}

		message := models.Message{
			Subject:            strings.TrimSpace(payload.Subject),
			Content:            strings.TrimSpace(payload.Content),
			MessageType:        payload.MessageType,
			ContactPreferences: payload.ContactPreferences,
			SenderContact:      payload.SenderContact,
		}

		errs := utils.ValidateStruct(message)
		if payload.PropertyID == "" {
			errs = append(errs, models.FieldError{Field: "propertyId", Message: "Property ID is required"})
		}
		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		propertyID, err := primitive.ObjectIDFromHex(payload.PropertyID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid property ID")
			return
		}

		var property models.Property
		err = config.PropertyCollection.FindOne(r.Context(), bson.M{"_id": propertyID}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			log.Printf("Property fetch error for message to %s: %v", payload.PropertyID, err)
			writeError(w, http.StatusInternalServerError, "Error sending message")
			return
		}

		if !property.IsAvailable {
			writeError(w, http.StatusBadRequest, "Property is not available")
			return
		}
		if property.OwnedBy(senderID) {
			writeError(w, http.StatusBadRequest, "Cannot send message to yourself")
			return
		}

		now := time.Now()
		message.ID = primitive.NewObjectID()
		message.Sender = senderID
		message.Receiver = property.Owner
		message.Property = propertyID
		message.CreatedAt = now
		message.UpdatedAt = now
		message.ApplySenderContactPreferences()

		if _, err := config.MessageCollection.InsertOne(r.Context(), message); err != nil {
			log.Printf("Message insert failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Error sending message")
			return
		}

		if err := populateMessages(r.Context(), []*models.Message{&message}); err != nil {
			log.Printf("Message population failed after send: %v", err)
		}

		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Message sent successfully",
			Data:    message,
		})
	}
}

func GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		values := r.URL.Query()
		var errs []models.FieldError

		boxType := values.Get("type")
		if boxType == "" {
			boxType = "all"
		}
		if boxType != "sent" && boxType != "received" && boxType != "all" {
			errs = append(errs, models.FieldError{Field: "type", Message: "type must be sent, received, or all"})
		}

		var isRead *bool
		if raw := values.Get("isRead"); raw != "" {
			if raw != "true" && raw != "false" {
				errs = append(errs, models.FieldError{Field: "isRead", Message: "isRead must be boolean"})
			} else {
				v := raw == "true"
				isRead = &v
			}
		}

		page := int64(1)
		limit := int64(DefaultMessagesLimit)
		page, errs = parsePositiveInt(values, "page", page, errs)
		limit, errs = parsePositiveInt(values, "limit", limit, errs)

		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		filter := bson.M{"isArchived": false}
		switch boxType {
		case "sent":
			filter["sender"] = userID
		case "received":
			filter["receiver"] = userID
		default:
			filter["$or"] = bson.A{
				bson.M{"sender": userID},
				bson.M{"receiver": userID},
			}
		}
		if isRead != nil {
			filter["isRead"] = *isRead
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := config.MessageCollection.Find(r.Context(), filter, findOptions)
		if err != nil {
			log.Printf("Error fetching messages for %s: %v", userID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error fetching messages")
			return
		}
		defer cursor.Close(r.Context())

		messages := []models.Message{}
		if err := cursor.All(r.Context(), &messages); err != nil {
			log.Printf("Error decoding messages: %v", err)
			writeError(w, http.StatusInternalServerError, "Error decoding messages")
			return
		}

		total, err := config.MessageCollection.CountDocuments(r.Context(), filter)
		if err != nil {
			log.Printf("Error counting messages: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching messages")
			return
		}

		unreadCount, err := countUnread(r.Context(), userID)
		if err != nil {
			log.Printf("Error counting unread messages: %v", err)
		}

		msgPtrs := make([]*models.Message, 0, len(messages))
		for i := range messages {
			msgPtrs = append(msgPtrs, &messages[i])
		}
		if err := populateMessages(r.Context(), msgPtrs); err != nil {
			log.Printf("Error populating messages: %v", err)
		}

		writeJSON(w, http.StatusOK, messageListResponse{
			Messages:    messages,
			Pagination:  models.NewPagination(page, limit, total),
			UnreadCount: unreadCount,
		})
	}
}

func GetMessageByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		message, ok := loadMessage(w, r)
		if !ok {
			return
		}

		if !message.InvolvesUser(userID) {
			writeError(w, http.StatusForbidden, "Not authorized to view this message")
			return
		}

		if message.ShouldMarkRead(userID) {
			now := time.Now()
			update := bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}}
			if _, err := config.MessageCollection.UpdateByID(r.Context(), message.ID, update); err != nil {
				log.Printf("Mark-as-read failed for %s: %v", message.ID.Hex(), err)
			} else {
				message.IsRead = true
				message.ReadAt = &now
			}
		}

		if err := populateMessages(r.Context(), []*models.Message{message}); err != nil {
			log.Printf("Error populating message %s: %v", message.ID.Hex(), err)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"message": message})
	}
}

func MarkMessageRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		message, ok := loadMessage(w, r)
		if !ok {
			return
		}

		if message.Receiver != userID {
			writeError(w, http.StatusForbidden, "Not authorized to mark this message as read")
			return
		}

		if message.ShouldMarkRead(userID) {
			now := time.Now()
			update := bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}}
			if _, err := config.MessageCollection.UpdateByID(r.Context(), message.ID, update); err != nil {
				log.Printf("Mark-as-read failed for %s: %v", message.ID.Hex(), err)
				writeError(w, http.StatusInternalServerError, "Error marking message as read")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
	}
}

func ArchiveMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		message, ok := loadMessage(w, r)
		if !ok {
			return
		}

		if !message.InvolvesUser(userID) {
			writeError(w, http.StatusForbidden, "Not authorized to archive this message")
			return
		}

		if message.ShouldArchive() {
			update := bson.M{"$set": bson.M{"isArchived": true, "updatedAt": time.Now()}}
			if _, err := config.MessageCollection.UpdateByID(r.Context(), message.ID, update); err != nil {
				log.Printf("Archive failed for %s: %v", message.ID.Hex(), err)
				writeError(w, http.StatusInternalServerError, "Error archiving message")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Message archived successfully"})
	}
}

func DeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		message, ok := loadMessage(w, r)
		if !ok {
			return
		}

		if message.Sender != userID {
			writeError(w, http.StatusForbidden, "Not authorized to delete this message")
			return
		}

		if _, err := config.MessageCollection.DeleteOne(r.Context(), bson.M{"_id": message.ID}); err != nil {
			log.Printf("Message delete failed for %s: %v", message.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error deleting message")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted successfully"})
	}
}

func GetUnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		unreadCount, err := countUnread(r.Context(), userID)
		if err != nil {
			log.Printf("Unread count failed for %s: %v", userID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error fetching unread count")
			return
		}

		writeJSON(w, http.StatusOK, map[string]int64{"unreadCount": unreadCount})
	}
}

func countUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return config.MessageCollection.CountDocuments(ctx, bson.M{
		"receiver":   userID,
		"isRead":     false,
		"isArchived": false,
	})
}

func loadMessage(w http.ResponseWriter, r *http.Request) (*models.Message, bool) {
	messageID := mux.Vars(r)["id"]
	objID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		log.Printf("Invalid message ID %s: %v", messageID, err)
		writeError(w, http.StatusBadRequest, "Invalid message ID")
		return nil, false
	}

	var message models.Message
	err = config.MessageCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&message)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Message not found")
		return nil, false
	}
	if err != nil {
		log.Printf("Message fetch error for %s: %v", messageID, err)
		writeError(w, http.StatusInternalServerError, "Error fetching message")
		return nil, false
	}
	return &message, true
}

// populateMessages attaches sender/receiver and property summaries with one
// batched lookup per collection.
func populateMessages(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	userIDs := make([]primitive.ObjectID, 0, 2*len(messages))
	propertyIDs := make([]primitive.ObjectID, 0, len(messages))
	seenUsers := make(map[primitive.ObjectID]bool)
	seenProps := make(map[primitive.ObjectID]bool)
	for _, m := range messages {
		for _, id := range []primitive.ObjectID{m.Sender, m.Receiver} {
			if !seenUsers[id] {
				seenUsers[id] = true
				userIDs = append(userIDs, id)
			}
		}
		if !seenProps[m.Property] {
			seenProps[m.Property] = true
			propertyIDs = append(propertyIDs, m.Property)
		}
	}

	userOptions := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	userCursor, err := config.UserCollection.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}}, userOptions)
	if err != nil {
		return err
	}
	defer userCursor.Close(ctx)

	users := make(map[primitive.ObjectID]models.ContactSummary, len(userIDs))
	for userCursor.Next(ctx) {
		var u models.ContactSummary
		if err := userCursor.Decode(&u); err != nil {
			log.Printf("Error decoding message participant: %v", err)
			continue
		}
		users[u.ID] = u
	}
	if userCursor.Err() != nil {
		return userCursor.Err()
	}

	propOptions := options.Find().SetProjection(bson.M{"title": 1, "location": 1, "images": 1})
	propCursor, err := config.PropertyCollection.Find(ctx, bson.M{"_id": bson.M{"$in": propertyIDs}}, propOptions)
	if err != nil {
		return err
	}
	defer propCursor.Close(ctx)

	properties := make(map[primitive.ObjectID]models.PropertySummary, len(propertyIDs))
	for propCursor.Next(ctx) {
		var p models.PropertySummary
		if err := propCursor.Decode(&p); err != nil {
			log.Printf("Error decoding message property: %v", err)
			continue
		}
		properties[p.ID] = p
	}
	if propCursor.Err() != nil {
		return propCursor.Err()
	}

	for _, m := range messages {
		if u, ok := users[m.Sender]; ok {
			uc := u
			m.SenderInfo = &uc
		}
		if u, ok := users[m.Receiver]; ok {
			uc := u
			m.ReceiverInfo = &uc
		}
		if p, ok := properties[m.Property]; ok {
			pc := p
			m.PropertyInfo = &pc
		}
	}
	return nil
}
