// Command adminctl prepares admin credentials for the server.
//
//	adminctl hash-password            reads a password from stdin, prints a bcrypt hash for ADMIN_PASSWORD_HASH
//	adminctl issue-token -email a@b   prints an admin JWT signed with JWT_SECRET
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"congregationsite/config"
	"congregationsite/internal/adapters/auth"
	"congregationsite/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "adminctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: adminctl hash-password | issue-token -email <email> [-expiry 12h]")
	}
	switch args[0] {
	case "hash-password":
		return hashPassword(args[1:], stdin, stdout)
	case "issue-token":
		return issueToken(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func hashPassword(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", 12, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := auth.NewBcryptHasher(*cost).Hash(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func issueToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	email := fs.String("email", "", "admin email (token subject)")
	expiry := fs.Duration("expiry", 0, "token lifetime (default JWT_EXPIRY)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("-email is required")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	ttl := cfg.Auth.JWTExpiry
	if *expiry > 0 {
		ttl = *expiry
	}
	addr := strings.ToLower(strings.TrimSpace(*email))
	token, err := auth.NewJWT(cfg.Auth.JWTSecret).Issue(&domain.Principal{
		Subject: addr,
		Email:   addr,
		Roles:   []string{domain.RoleAdmin},
	}, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}

