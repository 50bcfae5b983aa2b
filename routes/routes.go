package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestconnect/backend/controllers"
	"github.com/nestconnect/backend/middleware"
)

func Routes(router *mux.Router, client *mongo.Client, redisClient *redis.Client, uploadDir string) {
	// Auth routes
	router.HandleFunc("/api/auth/register", controllers.RegisterUser()).Methods("POST")
	router.HandleFunc("/api/auth/login", controllers.LoginUser()).Methods("POST")

	// Public teaser listings, registered before the authenticated subrouter
	// so they are matched first.
	router.HandleFunc("/api/properties/public", controllers.GetPublicProperties(redisClient)).Methods("GET")
	router.HandleFunc("/api/properties/public/featured", controllers.GetPublicFeaturedProperties()).Methods("GET")

	// Uploaded images are served statically.
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	authenticated.HandleFunc("/health", controllers.HealthCheck()).Methods("GET")

	// Property routes; fixed paths before the {id} matcher.
	authenticated.Handle("/properties",
		middleware.RequireRole("homeowner", "broker")(controllers.CreateProperty(redisClient))).Methods("POST")
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(redisClient)).Methods("GET")
	authenticated.HandleFunc("/properties/map", controllers.GetMapProperties()).Methods("GET")
	authenticated.HandleFunc("/properties/featured", controllers.GetFeaturedProperties()).Methods("GET")
	authenticated.HandleFunc("/properties/my-properties", controllers.GetMyProperties()).Methods("GET")
	authenticated.HandleFunc("/properties/user/my-properties", controllers.GetMyProperties()).Methods("GET")
	authenticated.HandleFunc("/properties/facilities/list", controllers.GetFacilitiesList()).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.GetPropertyByID()).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(redisClient)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(redisClient)).Methods("DELETE")
	authenticated.HandleFunc("/properties/{id}/toggle-availability", controllers.ToggleAvailability(redisClient)).Methods("PATCH")
	authenticated.HandleFunc("/properties/{id}/list", controllers.ListProperty(redisClient)).Methods("PATCH")
	authenticated.HandleFunc("/properties/{id}/delist", controllers.DelistProperty(redisClient)).Methods("PATCH")

	// Message routes
	authenticated.HandleFunc("/messages", controllers.SendMessage()).Methods("POST")
	authenticated.HandleFunc("/messages", controllers.GetMessages()).Methods("GET")
	authenticated.HandleFunc("/messages/unread/count", controllers.GetUnreadCount()).Methods("GET")
	authenticated.HandleFunc("/messages/{id}", controllers.GetMessageByID()).Methods("GET")
	authenticated.HandleFunc("/messages/{id}", controllers.DeleteMessage()).Methods("DELETE")
	authenticated.HandleFunc("/messages/{id}/read", controllers.MarkMessageRead()).Methods("PUT")
	authenticated.HandleFunc("/messages/{id}/archive", controllers.ArchiveMessage()).Methods("PUT")

	// Image uploads
	authenticated.HandleFunc("/uploads", controllers.UploadImages()).Methods("POST")
}
