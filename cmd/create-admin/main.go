package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"reclamassur/config"
	"reclamassur/db"
	"reclamassur/models"
	"reclamassur/services"
)

func main() {
	emailFlag := flag.String("email", "", "email of an existing profile to promote")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	email := strings.TrimSpace(*emailFlag)
	if email == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("=== Grant Administrator Role ===")
		fmt.Println()
		fmt.Print("Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}
	if email == "" {
		log.Fatal("Email is required")
	}

	ctx := context.Background()
	profile, err := services.FindProfileByEmail(ctx, db.DB, email)
	if err != nil {
		log.Fatalf("Profile lookup failed (the user must sign in once before promotion): %v", err)
	}

	actor := services.AuditContext{Email: "cli", Role: models.RoleAdmin}
	if err := services.GrantRole(ctx, db.DB, actor, profile.ID, models.RoleAdmin); err != nil {
		log.Fatalf("Failed to grant role: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Administrator role granted")
	fmt.Printf("  ID: %s\n", profile.ID)
	fmt.Printf("  Email: %s\n", profile.Email)
}
