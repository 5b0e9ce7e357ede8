package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/examify/examify-backend/internal/config"
	"github.com/examify/examify-backend/internal/database"
	"github.com/examify/examify-backend/internal/logger"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/repository"
	"github.com/examify/examify-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	role := flag.String("role", string(model.RoleExaminer), "Role of the new account (examiner or student)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Registration never touches sessions.
	accounts := service.NewAuthService(cfg, repository.NewUserRepository(pool), nil, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if !model.Role(*role).Valid() {
		fmt.Println("Error: role must be examiner or student")
		return
	}
	fmt.Printf("=== Create New Account (%s) ===\n", *role)

	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		fmt.Println("Error: Username must be at least 3 characters")
		return
	}

	fmt.Print("Enter Display Name (optional): ")
	name, _ := reader.ReadString('\n')

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := accounts.Register(ctx, model.RegisterRequest{
		Username: username,
		Name:     name,
		Password: password,
		Role:     model.Role(*role),
	})
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		fmt.Printf("Error: username %q is already taken\n", username)
		return
	case errors.As(err, &vErr):
		for field, msg := range vErr.Fields {
			fmt.Printf("Error: %s: %s\n", field, msg)
		}
		return
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("\nSuccess! %s '%s' created with ID: %s\n", user.Role, user.Username, user.ID)
}
