package controllers

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nestconnect/backend/models"
)

func TestCachedListingKeepsPageIDs(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	body, err := json.Marshal(propertyListResponse{
		Properties: []models.Property{},
		Pagination: models.NewPagination(1, 12, 2),
	})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := encodeCachedListing(body, ids)
	if err != nil {
		t.Fatalf("encodeCachedListing: %v", err)
	}
	entry, err := decodeCachedListing(raw)
	if err != nil {
		t.Fatalf("decodeCachedListing: %v", err)
	}

	if !bytes.Equal(entry.Body, body) {
		t.Error("cached body must round-trip unchanged")
	}
	if len(entry.IDs) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(entry.IDs))
	}
	for i := range ids {
		if entry.IDs[i] != ids[i] {
			t.Errorf("id %d: got %s, want %s", i, entry.IDs[i].Hex(), ids[i].Hex())
		}
	}

	var resp propertyListResponse
	if err := json.Unmarshal(entry.Body, &resp); err != nil {
		t.Fatalf("cached body must stay a valid listing response: %v", err)
	}
	if resp.Pagination.TotalItems != 2 {
		t.Errorf("unexpected pagination in cached body: %+v", resp.Pagination)
	}
}

func TestDecodeCachedListingRejectsMalformedEntries(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"ids":[]}`, `{"properties":[]}`} {
		if _, err := decodeCachedListing([]byte(raw)); err == nil {
			t.Errorf("entry %q must be treated as a miss", raw)
		}
	}
}
