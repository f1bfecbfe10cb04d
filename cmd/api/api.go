package api

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/service/admin"
	"github.com/jaehong-dev/eduhub-server/service/assignment"
	"github.com/jaehong-dev/eduhub-server/service/author"
	"github.com/jaehong-dev/eduhub-server/service/board"
	"github.com/jaehong-dev/eduhub-server/service/book"
	"github.com/jaehong-dev/eduhub-server/service/faq"
	"github.com/jaehong-dev/eduhub-server/service/lecture"
	"github.com/jaehong-dev/eduhub-server/service/upload"
	"github.com/jaehong-dev/eduhub-server/service/user"
	"github.com/jaehong-dev/eduhub-server/storage"
)

type APIServer struct {
	address string
	db      *gorm.DB
	store   *storage.B2Storage
}

func NewApiServer(address string, db *gorm.DB, store *storage.B2Storage) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		store:   store,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	boardHandler := board.NewPostHandler(s.db)
	boardHandler.RegisterRoutes(subrouter)

	assignmentHandler := assignment.NewAssignmentHandler(s.db, s.store)
	assignmentHandler.RegisterRoutes(subrouter)

	lectureHandler := lecture.NewLectureHandler(s.db)
	lectureHandler.RegisterRoutes(subrouter)

	bookHandler := book.NewBookHandler(s.db)
	bookHandler.RegisterRoutes(subrouter)

	authorHandler := author.NewAuthorHandler(s.db)
	authorHandler.RegisterRoutes(subrouter)

	faqHandler := faq.NewFAQHandler(s.db)
	faqHandler.RegisterRoutes(subrouter)

	adminHandler := admin.NewAdminHandler(s.db)
	adminHandler.RegisterRoutes(subrouter)

	uploadHandler := upload.NewUploadHandler(s.store)
	uploadHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{appOrigin()}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, cors(router)))
}

func appOrigin() string {
	if origin := os.Getenv("APP_URL"); origin != "" {
		return origin
	}
	return "*"
}
