package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/api"
	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/db"
	"github.com/jaehong-dev/eduhub-server/storage"
)

func main() {
	// Check for command-line arguments
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	// Start the server
	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:               "User",
		&models.PasswordResetToken{}: "PasswordResetToken",
		&models.Post{}:               "Post",
		&models.Comment{}:            "Comment",
		&models.PostLike{}:           "PostLike",
		&models.Bookmark{}:           "Bookmark",
		&models.Report{}:             "Report",
		&models.Assignment{}:         "Assignment",
		&models.Submission{}:         "Submission",
		&models.Lecture{}:            "Lecture",
		&models.LectureCompletion{}:  "LectureCompletion",
		&models.Book{}:               "Book",
		&models.AuthorProfile{}:      "AuthorProfile",
		&models.FAQ{}:                "FAQ",
		&models.SiteSetting{}:        "SiteSetting",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	if err := createDirectoryIfNotExist("uploads/files"); err != nil {
		return fmt.Errorf("error creating upload directory: %w", err)
	}
	log.Println("Upload directory created/verified")

	log.Println("All migrations and directory setup completed successfully")
	return nil
}


func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}


func startServer() {
	// Initialize database connection
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	// Bucket storage is optional; without credentials uploads stay local
	var store *storage.B2Storage
	if accountID := os.Getenv("B2_ACCOUNT_ID"); accountID != "" {
		store, err = storage.Init(context.Background(), accountID, os.Getenv("B2_APP_KEY"), os.Getenv("B2_BUCKET"))
		if err != nil {
			log.Fatalf("Storage initialization error: %v", err)
		}
		log.Println("Connected to bucket storage")
	} else {
		log.Println("Bucket storage not configured, uploads stored locally")
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start the API server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB, store)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}


func clearDatabase(DB *gorm.DB, tables []interface{}) error {
	if len(tables) == 0 {
		// Default: Drop all tables
		tables = []interface{}{
			&models.PostLike{},
			&models.Bookmark{},
			&models.Comment{},
			&models.Report{},
			&models.Submission{},
			&models.Assignment{},
			&models.Post{},
			&models.LectureCompletion{},
			&models.Lecture{},
			&models.Book{},
			&models.AuthorProfile{},
			&models.FAQ{},
			&models.SiteSetting{},
			&models.PasswordResetToken{},
			&models.User{},
		}
	}

	log.Println("Dropping tables...")

	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Printf("Warning dropping table %T: %v", table, err)
		} else {
			log.Printf("Table %T dropped", table)
		}
	}

	return nil
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()

	log.Println("Preparing to clear database...")

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Println("Database clearing cancelled.")
		return
	}

	var tableNames string
	fmt.Print("Enter table names to clear (comma separated) or leave blank to clear all: ")
	fmt.Scanln(&tableNames)

	var tables []interface{}
	if tableNames != "" {
		for _, table := range strings.Split(tableNames, ",") {
			switch strings.TrimSpace(table) {
			case "User":
				tables = append(tables, &models.User{})
			case "PasswordResetToken":
				tables = append(tables, &models.PasswordResetToken{})
			case "Post":
				tables = append(tables, &models.Post{})
			case "Comment":
				tables = append(tables, &models.Comment{})
			case "PostLike":
				tables = append(tables, &models.PostLike{})
			case "Bookmark":
				tables = append(tables, &models.Bookmark{})
			case "Report":
				tables = append(tables, &models.Report{})
			case "Assignment":
				tables = append(tables, &models.Assignment{})
			case "Submission":
				tables = append(tables, &models.Submission{})
			case "Lecture":
				tables = append(tables, &models.Lecture{})
			case "LectureCompletion":
				tables = append(tables, &models.LectureCompletion{})
			case "Book":
				tables = append(tables, &models.Book{})
			case "AuthorProfile":
				tables = append(tables, &models.AuthorProfile{})
			case "FAQ":
				tables = append(tables, &models.FAQ{})
			case "SiteSetting":
				tables = append(tables, &models.SiteSetting{})
			default:
				log.Printf("Unknown table: %s", table)
			}
		}
	}

	if err := clearDatabase(DB, tables); err != nil {
		log.Fatalf("Error clearing database: %v", err)
	}

	log.Println("Database cleared successfully")
}
