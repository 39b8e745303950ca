package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mehtakaran9/librarium-backend/internal/members"
	pkgauth "github.com/mehtakaran9/librarium-backend/pkg/auth"
	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
)

func testPasswordConfig() config.PasswordConfig {
	// minimum argon cost so the suite stays fast
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	membersSchema := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'member',
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(membersSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Members: members.NewRepository(db),
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "librarium",
			ExpirationMinutes: 30,
		},
		PasswordCfg: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterRequest{
		Name:     "Kavya Nair",
		Email:    "Kavya.Nair@Example.org",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "kavya.nair@example.org" {
		t.Fatalf("email not normalized: %s", dto.Email)
	}
	if dto.Role != enums.MemberRoleMember {
		t.Fatalf("role %s", dto.Role)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "kavya.nair@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	claims, err := pkgauth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "librarium",
		ExpirationMinutes: 30,
	}, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.MemberID != dto.ID || claims.Role != enums.MemberRoleMember {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{Name: "A", Email: "dup@example.org", Password: "long enough"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, req)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	cases := []RegisterRequest{
		{Email: "a@example.org", Password: "long enough"},
		{Name: "A", Password: "long enough"},
		{Name: "A", Email: "a@example.org", Password: "short"},
	}
	for i, req := range cases {
		if _, err := svc.Register(ctx, req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.org", Password: "long enough"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, LoginRequest{Email: "a@example.org", Password: "wrong password"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("wrong password: %v", err)
	}
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.org", Password: "long enough"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("unknown email: %v", err)
	}
}
