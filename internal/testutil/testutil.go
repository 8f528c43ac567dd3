// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/db"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// Now is the fixed instant used as "now" across tests: a Tuesday morning.
var Now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

const (
	Today     = "2026-03-10"
	Tomorrow  = "2026-03-11"
	Yesterday = "2026-03-09"
)

func Clock() time.Time {
	return Now
}

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// SeqIDs issues predictable identifiers: "appt_1", "appt_2", ...
type SeqIDs struct {
	n atomic.Int64
}

func (s *SeqIDs) NewID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, s.n.Add(1))
}

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, gdb *gorm.DB, id, name, role string) *models.User {
	t.Helper()

	u := &models.User{
		UserID:       id,
		Username:     id,
		PasswordHash: "x",
		Name:         name,
		Role:         role,
		IsActive:     true,
		ModuleAccess: []string{},
		CreatedAt:    Now,
		UpdatedAt:    Now,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}
