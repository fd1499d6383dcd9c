package main

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// fixtures are the two accounts the local frontend and manual checks rely on.
var fixtures = []entity.User{
	{Email: "ziho1234567890@gmail.com", Nickname: "asdf", Address: "Seoul", CertificationCode: "aaaaa-aaaa-aaaa", Status: entity.UserStatusActive},
	{Email: "ziho1234567891@gmail.com", Nickname: "asdf", Address: "Seoul", CertificationCode: "aaaaa-aaaa-aaa1", Status: entity.UserStatusPending},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatalf("failed to connect: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	for _, u := range fixtures {
		var id int64
		err := conn.QueryRow(ctx, `
			INSERT INTO users (email, nickname, address, certification_code, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET updated_at = now()
			RETURNING id
		`, u.Email, u.Nickname, u.Address, u.CertificationCode, string(u.Status)).Scan(&id)
		if err != nil {
			logger.Fatalf("failed to seed %s: %v", u.Email, err)
		}
		logger.WithFields(logrus.Fields{"id": id, "email": u.Email, "status": u.Status}).Info("seeded user")
	}
}
