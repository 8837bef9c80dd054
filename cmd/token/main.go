// Command token mints a development bearer token for the lostfound server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "User id (token subject)")
	name := flag.String("name", "", "Display name")
	email := flag.String("email", "", "Email address")
	admin := flag.Bool("admin", false, "Grant the admin role")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (defaults to $JWT_SECRET)")
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "Usage: token -user <id> [-name <name>] [-admin] [-ttl 24h] [-secret <secret>]")
		fmt.Fprintln(os.Stderr, "  Reads the secret from JWT_SECRET if -secret is not given")
		os.Exit(1)
	}

	role := models.RoleUser
	if *admin {
		role = models.RoleAdmin
	}

	tok, err := crypto.IssueToken([]byte(*secret), models.User{
		ID:    *userID,
		Name:  *name,
		Email: *email,
		Role:  role,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("LOSTFOUND_USER=%s\n", *userID)
	fmt.Printf("LOSTFOUND_TOKEN=%s\n", tok)
}
