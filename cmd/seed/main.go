package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-postboard/config"
	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	pginfra "github.com/oksasatya/go-ddd-postboard/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

// Usage:
//
//	seed               insert demo users, posts and comments
//	seed hash <pass>   print a bcrypt hash for ADMIN_PASSWORD_HASH
func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash" {
		hash, err := helpers.HashPassword(os.Args[2])
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2}, logger)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	deps := app.Deps{
		Users:    pginfra.NewUserRepository(pool),
		Posts:    pginfra.NewPostRepository(pool),
		Comments: pginfra.NewCommentRepository(pool),
		Tx:       pginfra.NewTransactor(pool, logger),
		Logger:   logger,
	}
	users := app.NewUserService(deps)
	posts := app.NewPostService(deps, cfg.PostsDefaultLimit)
	comments := app.NewCommentService(deps)

	alice := ensureUser(ctx, users, "alice@example.com", "Alice")
	bob := ensureUser(ctx, users, "bob@example.com", "Bob")

	p1, err := posts.CreatePost(ctx, "Hello, world", "First post on the board.", alice.ID, true)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	p2, err := posts.CreatePost(ctx, "Drafting ideas", "Not published yet.", bob.ID, false)
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	for _, c := range []struct{ content, post, author string }{
		{"Welcome aboard!", p1.ID, bob.ID},
		{"Thanks Bob.", p1.ID, alice.ID},
		{"Looking forward to it.", p2.ID, alice.ID},
	} {
		if _, err := comments.CreateComment(ctx, c.content, c.post, c.author); err != nil {
			log.Fatalf("failed to seed comment: %v", err)
		}
	}
	fmt.Printf("seeded users=%s,%s posts=%s,%s comments=3\n", alice.ID, bob.ID, p1.ID, p2.ID)
}

// ensureUser creates the user or returns the existing one with that email.
func ensureUser(ctx context.Context, svc *app.UserService, email, name string) *entity.User {
	u, err := svc.CreateUser(ctx, email, name)
	if err == nil {
		return u
	}
	if !errors.Is(err, app.ErrConflict) {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	all, err := svc.ListUsers(ctx)
	if err != nil {
		log.Fatalf("failed to list users: %v", err)
	}
	for i := range all {
		if all[i].Email == email {
			return &all[i]
		}
	}
	log.Fatalf("user %s exists but was not listed", email)
	return nil
}
