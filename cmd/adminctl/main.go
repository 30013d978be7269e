// Command adminctl creates or promotes an ADMIN account from the terminal.
// It shares the service layer with the server, so the same hashing and
// transaction rules apply.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/config"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/services"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/validation"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Repeat password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) < 6 {
		return "", fmt.Errorf("password must be at least 6 characters")
	}
	return string(first), nil
}

func main() {
	email := flag.String("email", "", "email of the admin account")
	name := flag.String("name", "Administrator", "display name for a newly created account")
	flag.Parse()

	if *email == "" || !validation.EmailValid(*email) {
		log.Fatal("a valid -email is required")
	}

	_ = godotenv.Load()
	cfg := config.LoadConfig()

	password, err := promptPassword()
	if err != nil {
		log.Fatalf("password: %v", err)
	}

	// the CLI has no use for request logs
	logger := logging.NewDiscardLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	users := services.NewUserService(db, repos, cfg, logger)

	user, err := users.EnsureAdmin(ctx, *name, *email, password)
	if err != nil {
		log.Fatalf("ensuring admin: %v", err)
	}

	fmt.Printf("admin ready: %s <%s>\n", user.Name, user.Email)
}
