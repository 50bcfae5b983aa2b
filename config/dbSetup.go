package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	PropertyCollection *mongo.Collection
	MessageCollection  *mongo.Collection
)

func ConnectDB() (*mongo.Client, error) {
	MONGO_URI := os.Getenv("MONGOURI")
	if MONGO_URI == "" {
		return nil, fmt.Errorf("MONGOURI not set in environment")
	}

	clientOptions := options.Client().ApplyURI(MONGO_URI)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("MongoDB ping failed: %v", err)
	}

	log.Println("Connected to MongoDB")
	return client, nil
}

func InitCollections(client *mongo.Client) {
	dbName := os.Getenv("DB")
	UserCollection = client.Database(dbName).Collection("users")
	PropertyCollection = client.Database(dbName).Collection("properties")
	MessageCollection = client.Database(dbName).Collection("messages")
}

// EnsureIndexes creates the search, map, and inbox indexes. Safe to call on
// every startup; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context) error {
	_, err := PropertyCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "location.city", Value: 1},
			{Key: "location.area", Value: 1},
			{Key: "location.pinCode", Value: 1},
			{Key: "propertyType", Value: 1},
			{Key: "rent", Value: 1},
			{Key: "isAvailable", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "location.coordinates.latitude", Value: 1},
			{Key: "location.coordinates.longitude", Value: 1},
		}},
	})
	if err != nil {
		return fmt.Errorf("property indexes: %v", err)
	}

	_, err = MessageCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "sender", Value: 1},
			{Key: "receiver", Value: 1},
			{Key: "createdAt", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "receiver", Value: 1},
			{Key: "isRead", Value: 1},
		}},
	})
	if err != nil {
		return fmt.Errorf("message indexes: %v", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %v", err)
	}
	return nil
}

func CloseDBConnection(client *mongo.Client) {
	if err := client.Disconnect(context.TODO()); err != nil {
		log.Fatalf("Error closing database connection: %v", err)
	}
	log.Println("MongoDB connection closed")
}
