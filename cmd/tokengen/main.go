// Command tokengen mints access tokens for local testing. It signs with
// the same TUTOR_AUTH_* configuration as the server.
//
//	tokengen -user 3f0c...   # token for an existing learner ID
//	tokengen                 # token for a fresh random learner
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/auth"
	"github.com/phrazzld/scry-tutor/internal/config"
)

func main() {
	userFlag := flag.String("user", "", "learner UUID to embed in the token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to create JWT service: %v", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("User: %s\nExpires in: %d minutes\nToken: %s\n", userID, cfg.Auth.TokenLifetimeMinutes, token)
}
