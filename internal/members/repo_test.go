package members

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mehtakaran9/librarium-backend/pkg/db/models"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:members_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	members := `
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
	require.NoError(t, db.Exec(members).Error)
	return db
}

func seedMember(t *testing.T, db *gorm.DB, name, email string, role enums.MemberRole) *models.Member {
	t.Helper()
	member := &models.Member{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedMember(t, db, "Asha Rao", "asha@example.com", enums.MemberRoleMember)

	found, err := repo.FindByEmail(ctx, "  ASHA@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersAndPages(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedMember(t, db, "Asha Rao", "asha@example.com", enums.MemberRoleMember)
	seedMember(t, db, "Bina Iyer", "bina@example.com", enums.MemberRoleLibrarian)
	seedMember(t, db, "Chand Asham", "chand@example.com", enums.MemberRoleMember)

	params := pagination.Params{Page: 1, Limit: 10}.Normalize("")

	records, total, err := repo.List(ctx, params, ListFilters{Query: "asha"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)
	assert.Equal(t, "Asha Rao", records[0].Name)

	librarian := enums.MemberRoleLibrarian
	records, total, err = repo.List(ctx, params, ListFilters{Role: &librarian})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "Bina Iyer", records[0].Name)

	small := pagination.Params{Page: 2, Limit: 2}.Normalize("")
	records, total, err = repo.List(ctx, small, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 1)
}

func TestServiceHidesPasswordHash(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seeded := seedMember(t, db, "Asha Rao", "asha@example.com", enums.MemberRoleMember)

	dto, err := svc.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, dto.Email)
	assert.Equal(t, enums.MemberRoleMember, dto.Role)
}
