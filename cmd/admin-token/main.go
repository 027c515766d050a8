package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/apparelstore/internal/auth"
	"github.com/utafrali/apparelstore/internal/config"
	"github.com/utafrali/apparelstore/pkg/logger"
)

func main() {
	var (
		hash    = flag.Bool("hash", false, "read a password from stdin and print its bcrypt hash")
		email   = flag.String("email", "", "admin email (defaults to ADMIN_EMAIL)")
		subject = flag.String("sub", "", "token subject (defaults to a random id)")
		expiry  = flag.Duration("expiry", 0, "token lifetime (defaults to ADMIN_TOKEN_EXPIRY)")
	)
	flag.Parse()

	if *hash {
		if err := printHash(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.NewWithWriter("admin-token", cfg.LogLevel, os.Stderr)

	ttl := cfg.TokenExpiry
	if *expiry > 0 {
		ttl = *expiry
	}
	addr := cfg.AdminEmail
	if *email != "" {
		addr = *email
	}
	sub := *subject
	if sub == "" {
		sub = uuid.NewString()
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).GenerateToken(sub, addr, auth.RoleAdmin)
	if err != nil {
		log.Error("failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("admin token issued",
		slog.String("email", addr),
		slog.Time("expires_at", time.Now().Add(ttl)),
	)
	fmt.Println(token)
}

func printHash() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	h, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}
