// Command createuser provisions an operator account directly in the card
// database. Meant to be run on the host next to the API binary.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/svpay/svpay-api/internal/config"
	"github.com/svpay/svpay-api/internal/domain/user"
	"github.com/svpay/svpay-api/internal/pkg/database"
	"github.com/svpay/svpay-api/internal/pkg/password"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ctx := context.Background()

	fmt.Println("--- Create SVPAY user ---")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username must not be empty")
	}

	plaintext, err := readPassword("Password (hidden): ")
	if err != nil {
		return err
	}
	if plaintext == "" {
		return errors.New("password must not be empty")
	}

	confirm, err := readPassword("Repeat password: ")
	if err != nil {
		return err
	}
	if plaintext != confirm {
		return errors.New("passwords do not match")
	}

	if len(plaintext) > password.MaxLength {
		return fmt.Errorf("password is too long: %d bytes, maximum is %d (UTF-8)", len(plaintext), password.MaxLength)
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	db, err := database.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	u, err := user.NewRepository(db).Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("User %q created (id %d)\n", u.Username, u.ID)
	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
