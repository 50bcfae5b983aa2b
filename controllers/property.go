package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestconnect/backend/config"
	"github.com/nestconnect/backend/models"
	"github.com/nestconnect/backend/utils"
)

var pinCodeRe = regexp.MustCompile(`^[0-9]{6}$`)

type propertyListResponse struct {
	Properties interface{}       `json:"properties"`
	Pagination models.Pagination `json:"pagination"`
}

type propertyResponse struct {
	Message  string      `json:"message,omitempty"`
	Property interface{} `json:"property"`
}

func callerObjectID(r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func CreateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerObjectID(r)
		if !ok {
			log.Println("User ID missing in context")
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		var property models.Property
		property.SetDefaults()
		if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
			log.Printf("Invalid request body: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		property.Title = strings.TrimSpace(property.Title)

		if errs := utils.ValidateStruct(property); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		now := time.Now()
		property.ID = primitive.NewObjectID()
		property.Owner = ownerID
		property.OwnerInfo = nil
		property.Views = 0
		property.IsVerified = false
		property.CreatedAt = now
		property.UpdatedAt = now

		if _, err := config.PropertyCollection.InsertOne(r.Context(), property); err != nil {
			log.Printf("Insert failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create property")
			return
		}

		go invalidatePropertyCache(redisClient)

		if err := populateOwners(r.Context(), []*models.Property{&property}); err != nil {
			log.Printf("Owner lookup failed after create: %v", err)
		}

		writeJSON(w, http.StatusCreated, propertyResponse{
			Message:  "Property created successfully",
			Property: property,
		})
	}
}

func GetAllProperties(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context for GetAllProperties")
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		query, errs := ParsePropertyQuery(r.URL.Query(), DefaultListingLimit, true)
		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		cacheKey := propertyCacheKey(userID, r.URL.Query())
		if serveCached(w, r, redisClient, cacheKey) {
			return
		}

		filter := query.Filter()
		findOptions := options.Find().
			SetSort(query.Sort()).
			SetSkip(query.Skip()).
			SetLimit(query.Limit)

		cursor, err := config.PropertyCollection.Find(r.Context(), filter, findOptions)
		if err != nil {
			log.Printf("Error fetching properties with filter %+v: %v", filter, err)
			writeError(w, http.StatusInternalServerError, "Error fetching properties")
			return
		}
		defer cursor.Close(r.Context())

		properties := []models.Property{}
		if err := cursor.All(r.Context(), &properties); err != nil {
			log.Printf("Error decoding properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error decoding properties")
			return
		}

		total, err := config.PropertyCollection.CountDocuments(r.Context(), filter)
		if err != nil {
			log.Printf("Error counting properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching properties")
			return
		}

		if err := populateOwners(r.Context(), propertyPtrs(properties)); err != nil {
			log.Printf("Error populating owners: %v", err)
		}

		ids := propertyIDs(properties)
		go incrementViews(ids)

		writeListingWithCache(w, redisClient, cacheKey, propertyListResponse{
			Properties: properties,
			Pagination: models.NewPagination(query.Page, query.Limit, total),
		}, ids)
	}
}

func GetPublicProperties(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, errs := ParsePropertyQuery(r.URL.Query(), DefaultListingLimit, false)
		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		cacheKey := propertyCacheKey("public", r.URL.Query())
		if serveCached(w, r, redisClient, cacheKey) {
			return
		}

		filter := query.Filter()
		findOptions := options.Find().
			SetProjection(teaserProjection()).
			SetSort(query.Sort()).
			SetSkip(query.Skip()).
			SetLimit(query.Limit)

		cursor, err := config.PropertyCollection.Find(r.Context(), filter, findOptions)
		if err != nil {
			log.Printf("Error fetching public properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching properties")
			return
		}
		defer cursor.Close(r.Context())

		properties := []models.Property{}
		if err := cursor.All(r.Context(), &properties); err != nil {
			log.Printf("Error decoding public properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error decoding properties")
			return
		}

		total, err := config.PropertyCollection.CountDocuments(r.Context(), filter)
		if err != nil {
			log.Printf("Error counting public properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching properties")
			return
		}

		teasers, err := publicViews(r.Context(), properties)
		if err != nil {
			log.Printf("Error populating public owners: %v", err)
		}

		ids := propertyIDs(properties)
		go incrementViews(ids)

		writeListingWithCache(w, redisClient, cacheKey, propertyListResponse{
			Properties: teasers,
			Pagination: models.NewPagination(query.Page, query.Limit, total),
		}, ids)
	}
}

func GetMapProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, errs := ParseMapQuery(r.URL.Query())
		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		findOptions := options.Find().
			SetProjection(bson.M{
				"title":        1,
				"rent":         1,
				"propertyType": 1,
				"location":     1,
				"images":       1,
			}).
			SetLimit(MapResultCap)

		cursor, err := config.PropertyCollection.Find(r.Context(), query.Filter(), findOptions)
		if err != nil {
			log.Printf("Error fetching map properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching map properties")
			return
		}
		defer cursor.Close(r.Context())

		properties := []models.Property{}
		if err := cursor.All(r.Context(), &properties); err != nil {
			log.Printf("Error decoding map properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error decoding map properties")
			return
		}

		pins := make([]models.MapProperty, 0, len(properties))
		for i := range properties {
			pins = append(pins, properties[i].MapView())
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"properties": pins})
	}
}

func GetFeaturedProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := fetchFeatured(r.Context(), nil)
		if err != nil {
			log.Printf("Error fetching featured properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching featured properties")
			return
		}

		if err := populateOwners(r.Context(), propertyPtrs(properties)); err != nil {
			log.Printf("Error populating owners: %v", err)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"properties": properties})
	}
}

func GetPublicFeaturedProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := fetchFeatured(r.Context(), teaserProjection())
		if err != nil {
			log.Printf("Error fetching featured properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error fetching featured properties")
			return
		}

		teasers, err := publicViews(r.Context(), properties)
		if err != nil {
			log.Printf("Error populating public owners: %v", err)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"properties": teasers})
	}
}

func fetchFeatured(ctx context.Context, projection bson.M) ([]models.Property, error) {
	filter := bson.M{"isAvailable": true, "isVerified": true}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(FeaturedLimit)
	if projection != nil {
		findOptions.SetProjection(projection)
	}

	cursor, err := config.PropertyCollection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func GetMyProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.PropertyCollection.Find(r.Context(), bson.M{"owner": ownerID}, findOptions)
		if err != nil {
			log.Printf("Error fetching own properties for %s: %v", ownerID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error fetching your properties")
			return
		}
		defer cursor.Close(r.Context())

		properties := []models.Property{}
		if err := cursor.All(r.Context(), &properties); err != nil {
			log.Printf("Error decoding own properties: %v", err)
			writeError(w, http.StatusInternalServerError, "Error decoding your properties")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"properties": properties})
	}
}

func GetFacilitiesList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"facilities": models.FacilityKeys()})
	}
}

func GetPropertyByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			writeError(w, http.StatusBadRequest, "Invalid property ID")
			return
		}

		var property models.Property
		err = config.PropertyCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			log.Printf("Property fetch error for %s: %v", propertyID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching property")
			return
		}

		if err := populateOwners(r.Context(), []*models.Property{&property}); err != nil {
			log.Printf("Error populating owner for %s: %v", propertyID, err)
		}

		go incrementViews([]primitive.ObjectID{objID})

		writeJSON(w, http.StatusOK, propertyResponse{Property: property})
	}
}

func UpdateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		existing, ok := loadOwnedProperty(w, r, ownerID)
		if !ok {
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			log.Printf("Invalid update data: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid update data")
			return
		}

		// Immutable and server-managed fields.
		delete(updateData, "_id")
		delete(updateData, "owner")
		delete(updateData, "ownerInfo")
		delete(updateData, "views")
		delete(updateData, "isVerified")
		delete(updateData, "createdAt")
		delete(updateData, "updatedAt")

		if errs := validatePropertyUpdate(updateData); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		// New images are appended to the existing gallery, never replace it.
		newImages, errs := extractImages(updateData)
		if errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		update := bson.M{}
		updateData["updatedAt"] = time.Now()
		update["$set"] = updateData
		if len(newImages) > 0 {
			update["$push"] = bson.M{"images": bson.M{"$each": newImages}}
		}

		if _, err := config.PropertyCollection.UpdateByID(r.Context(), existing.ID, update); err != nil {
			log.Printf("Update failed for property %s: %v", existing.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Update failed")
			return
		}

		go invalidatePropertyCache(redisClient)

		property, err := fetchPopulatedProperty(r.Context(), existing.ID)
		if err != nil {
			log.Printf("Fetch after update failed for %s: %v", existing.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error fetching updated property")
			return
		}

		writeJSON(w, http.StatusOK, propertyResponse{
			Message:  "Property updated successfully",
			Property: property,
		})
	}
}

func DeleteProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		existing, ok := loadOwnedProperty(w, r, ownerID)
		if !ok {
			return
		}

		if _, err := config.PropertyCollection.DeleteOne(r.Context(), bson.M{"_id": existing.ID}); err != nil {
			log.Printf("Delete failed for property %s: %v", existing.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Delete failed")
			return
		}

		go invalidatePropertyCache(redisClient)

		writeJSON(w, http.StatusOK, map[string]string{"message": "Property deleted successfully"})
	}
}

// ToggleAvailability flips the listed/delisted state; ListProperty and
// DelistProperty pin it. All three are owner-only and return the
// repopulated record.
func ToggleAvailability(redisClient *redis.Client) http.HandlerFunc {
	return setAvailability(redisClient, nil)
}

func ListProperty(redisClient *redis.Client) http.HandlerFunc {
	available := true
	return setAvailability(redisClient, &available)
}

func DelistProperty(redisClient *redis.Client) http.HandlerFunc {
	available := false
	return setAvailability(redisClient, &available)
}

func setAvailability(redisClient *redis.Client, target *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := callerObjectID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "User ID missing in context")
			return
		}

		existing, ok := loadOwnedProperty(w, r, ownerID)
		if !ok {
			return
		}

		next := !existing.IsAvailable
		if target != nil {
			next = *target
		}

		update := bson.M{"$set": bson.M{"isAvailable": next, "updatedAt": time.Now()}}
		if _, err := config.PropertyCollection.UpdateByID(r.Context(), existing.ID, update); err != nil {
			log.Printf("Availability update failed for %s: %v", existing.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error updating property availability")
			return
		}

		go invalidatePropertyCache(redisClient)

		property, err := fetchPopulatedProperty(r.Context(), existing.ID)
		if err != nil {
			log.Printf("Fetch after availability change failed for %s: %v", existing.ID.Hex(), err)
			writeError(w, http.StatusInternalServerError, "Error fetching property")
			return
		}

		message := "Property delisted successfully"
		if next {
			message = "Property listed successfully"
		}
		writeJSON(w, http.StatusOK, propertyResponse{Message: message, Property: property})
	}
}

// loadOwnedProperty resolves the {id} route variable and enforces ownership,
// distinguishing "not found" from "not yours".
func loadOwnedProperty(w http.ResponseWriter, r *http.Request, ownerID primitive.ObjectID) (*models.Property, bool) {
	propertyID := mux.Vars(r)["id"]
	objID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		log.Printf("Invalid property ID %s: %v", propertyID, err)
		writeError(w, http.StatusBadRequest, "Invalid property ID")
		return nil, false
	}

	var property models.Property
	err = config.PropertyCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&property)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusNotFound, "Property not found")
		return nil, false
	}
	if err != nil {
		log.Printf("Property fetch error for %s: %v", propertyID, err)
		writeError(w, http.StatusInternalServerError, "Error fetching property")
		return nil, false
	}

	if !property.OwnedBy(ownerID) {
		log.Printf("User %s is not the owner of property %s", ownerID.Hex(), propertyID)
		writeError(w, http.StatusForbidden, "You do not own this property")
		return nil, false
	}
	return &property, true
}

func validatePropertyUpdate(updateData map[string]interface{}) []models.FieldError {
	var errs []models.FieldError

	if v, ok := updateData["title"]; ok {
		s, isStr := v.(string)
		s = strings.TrimSpace(s)
		if !isStr || len(s) < 5 || len(s) > 100 {
			errs = append(errs, models.FieldError{Field: "title", Message: "title must be between 5 and 100 characters"})
		} else {
			updateData["title"] = s
		}
	}
	if v, ok := updateData["description"]; ok {
		s, isStr := v.(string)
		if !isStr || len(s) < 20 || len(s) > 1000 {
			errs = append(errs, models.FieldError{Field: "description", Message: "description must be between 20 and 1000 characters"})
		}
	}
	if v, ok := updateData["propertyType"]; ok {
		s, isStr := v.(string)
		if !isStr || !contains(models.PropertyTypes, s) {
			errs = append(errs, models.FieldError{Field: "propertyType", Message: "propertyType must be PG, house, or flat"})
		}
	}
	if v, ok := updateData["rentType"]; ok {
		s, isStr := v.(string)
		if !isStr || !contains(models.RentTypes, s) {
			errs = append(errs, models.FieldError{Field: "rentType", Message: "rentType must be monthly or yearly"})
		}
	}
	if v, ok := updateData["rent"]; ok {
		n, isNum := v.(float64)
		if !isNum || n < 0 {
			errs = append(errs, models.FieldError{Field: "rent", Message: "rent must be a non-negative number"})
		}
	}
	if v, ok := updateData["location"]; ok {
		loc, isMap := v.(map[string]interface{})
		if !isMap {
			errs = append(errs, models.FieldError{Field: "location", Message: "location must be an object"})
		} else if pin, ok := loc["pinCode"]; ok {
			s, isStr := pin.(string)
			if !isStr || !pinCodeRe.MatchString(s) {
				errs = append(errs, models.FieldError{Field: "location.pinCode", Message: "pinCode must be exactly 6 digits"})
			}
		}
	}
	return errs
}

func extractImages(updateData map[string]interface{}) ([]models.Image, []models.FieldError) {
	raw, ok := updateData["images"]
	if !ok {
		return nil, nil
	}
	delete(updateData, "images")

	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, []models.FieldError{{Field: "images", Message: "images must be a list of {url, caption}"}}
	}
	var images []models.Image
	if err := json.Unmarshal(buf, &images); err != nil {
		return nil, []models.FieldError{{Field: "images", Message: "images must be a list of {url, caption}"}}
	}
	for _, img := range images {
		if img.URL == "" {
			return nil, []models.FieldError{{Field: "images", Message: "image url is required"}}
		}
	}
	return images, nil
}

func fetchPopulatedProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	if err := config.PropertyCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		return nil, err
	}
	if err := populateOwners(ctx, []*models.Property{&property}); err != nil {
		log.Printf("Owner lookup failed for %s: %v", id.Hex(), err)
	}
	return &property, nil
}

// populateOwners attaches the authenticated-view owner subset to each
// property with a single batched user lookup.
func populateOwners(ctx context.Context, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(properties))
	seen := make(map[primitive.ObjectID]bool, len(properties))
	for _, p := range properties {
		if !seen[p.Owner] {
			seen[p.Owner] = true
			ids = append(ids, p.Owner)
		}
	}

	findOptions := options.Find().SetProjection(bson.M{"name": 1, "phone": 1, "email": 1, "role": 1})
	cursor, err := config.UserCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	owners := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for cursor.Next(ctx) {
		var u models.UserSummary
		if err := cursor.Decode(&u); err != nil {
			log.Printf("Error decoding owner: %v", err)
			continue
		}
		owners[u.ID] = u
	}
	if cursor.Err() != nil {
		return cursor.Err()
	}

	for _, p := range properties {
		if owner, ok := owners[p.Owner]; ok {
			o := owner
			p.OwnerInfo = &o
		}
	}
	return nil
}

// publicViews projects properties to the teaser field set with name+role
// owner attribution.
func publicViews(ctx context.Context, properties []models.Property) ([]models.PublicProperty, error) {
	teasers := make([]models.PublicProperty, 0, len(properties))

	ids := make([]primitive.ObjectID, 0, len(properties))
	seen := make(map[primitive.ObjectID]bool, len(properties))
	for i := range properties {
		if !seen[properties[i].Owner] {
			seen[properties[i].Owner] = true
			ids = append(ids, properties[i].Owner)
		}
	}

	owners := make(map[primitive.ObjectID]models.PublicOwner, len(ids))
	var lookupErr error
	if len(ids) > 0 {
		findOptions := options.Find().SetProjection(bson.M{"name": 1, "role": 1})
		cursor, err := config.UserCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
		if err != nil {
			lookupErr = err
		} else {
			defer cursor.Close(ctx)
			for cursor.Next(ctx) {
				var o models.PublicOwner
				if err := cursor.Decode(&o); err != nil {
					log.Printf("Error decoding owner: %v", err)
					continue
				}
				owners[o.ID] = o
			}
			lookupErr = cursor.Err()
		}
	}

	for i := range properties {
		var owner *models.PublicOwner
		if o, ok := owners[properties[i].Owner]; ok {
			oc := o
			owner = &oc
		}
		teasers = append(teasers, properties[i].PublicView(owner))
	}
	return teasers, lookupErr
}

// incrementViews bumps the view counter for every record served by a listing
// read. Fire-and-forget: callers run it in a goroutine and the response
// never waits on it.
func incrementViews(ids []primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := config.PropertyCollection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		log.Printf("View count update failed: %v", err)
	}
}

func propertyIDs(properties []models.Property) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(properties))
	for i := range properties {
		ids = append(ids, properties[i].ID)
	}
	return ids
}

func propertyPtrs(properties []models.Property) []*models.Property {
	ptrs := make([]*models.Property, 0, len(properties))
	for i := range properties {
		ptrs = append(ptrs, &properties[i])
	}
	return ptrs
}

func teaserProjection() bson.M {
	return bson.M{
		"title":         1,
		"propertyType":  1,
		"location.city": 1,
		"images":        1,
		"owner":         1,
		"views":         1,
		"createdAt":     1,
	}
}

// cachedListing is the stored form of a listing page: the rendered body plus
// the page's property ids, so cache hits still count views.
type cachedListing struct {
	Body json.RawMessage      `json:"body"`
	IDs  []primitive.ObjectID `json:"ids"`
}

func encodeCachedListing(body []byte, ids []primitive.ObjectID) ([]byte, error) {
	return json.Marshal(cachedListing{Body: body, IDs: ids})
}

func decodeCachedListing(raw []byte) (*cachedListing, error) {
	var entry cachedListing
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	if len(entry.Body) == 0 {
		return nil, errors.New("cached listing has no body")
	}
	return &entry, nil
}

// serveCached writes the cached listing body if present and replays the view
// increment for the page's records. Cache errors other than a miss are logged
// and treated as misses.
func serveCached(w http.ResponseWriter, r *http.Request, redisClient *redis.Client, cacheKey string) bool {
	cachedData, err := redisClient.Get(r.Context(), cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", cacheKey, err)
		}
		return false
	}

	entry, err := decodeCachedListing(cachedData)
	if err != nil {
		log.Printf("Dropping malformed cache entry %s: %v", cacheKey, err)
		return false
	}

	log.Printf("Cache hit for key: %s", cacheKey)
	go incrementViews(entry.IDs)

	w.Header().Set("Content-Type", "application/json")
	w.Write(entry.Body)
	return true
}

func writeListingWithCache(w http.ResponseWriter, redisClient *redis.Client, cacheKey string, resp propertyListResponse, ids []primitive.ObjectID) {
	resultBytes, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to serialize properties: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	entry, err := encodeCachedListing(resultBytes, ids)
	if err != nil {
		log.Printf("Failed to encode cache entry for key %s: %v", cacheKey, err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Set(ctx, cacheKey, entry, 10*time.Minute).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(resultBytes)
}

// propertyCacheKey hashes the caller scope and the sorted query string so
// equivalent requests share an entry.
func propertyCacheKey(scope string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(scope)
	sb.WriteString(":")

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "properties:" + hex.EncodeToString(sum[:])
}

// invalidatePropertyCache drops every cached listing page after any property
// mutation. Callers run it in a goroutine.
func invalidatePropertyCache(redisClient *redis.Client) {
	ctx := context.Background()
	const scanPattern = "properties:*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern %q: %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		log.Printf("Error deleting %d property cache keys: %v", len(keysToDelete), execErr)
	} else {
		log.Printf("Property cache invalidated, deleted %d keys", len(keysToDelete))
	}
}
