package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/calendar"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/repository"
)

// Minimal sqlite-friendly schema for the service logic under test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			handle TEXT NOT NULL UNIQUE,
			display_name TEXT,
			contact_phone TEXT,
			status TEXT NOT NULL,
			note TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE posts (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			author_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			calendar TEXT,
			slot_count INTEGER,
			task_id TEXT,
			address TEXT,
			lat REAL,
			lng REAL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE claims (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			post_id TEXT NOT NULL,
			claimant_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			slot_start DATETIME,
			slot_end DATETIME,
			comment TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			cancelled_at DATETIME
		);`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			event_type TEXT NOT NULL,
			created_at DATETIME,
			user_id TEXT,
			post_id TEXT,
			claim_id TEXT,
			details TEXT
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newTestPostService(db *gorm.DB) *PostService {
	return NewPostService(
		repository.NewGormPostRepository(db),
		repository.NewGormEventRepository(db),
		nil,
		zerolog.Nop(),
	)
}

func newTestClaimService(db *gorm.DB, now time.Time) *ClaimService {
	svc := NewClaimService(
		repository.NewGormClaimRepository(db),
		repository.NewGormPostRepository(db),
		repository.NewGormUserRepository(db),
		repository.NewGormEventRepository(db),
		zerolog.Nop(),
	)
	svc.now = func() time.Time { return now }
	return svc
}

func seedUser(t *testing.T, db *gorm.DB, status model.UserStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	u := &model.User{
		ID:     id,
		Handle: "user-" + id.String()[:8],
		Status: status,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func calendarJSON(t *testing.T, cal calendar.Calendar) datatypes.JSON {
	t.Helper()
	raw, err := cal.Normalize().ToJSON()
	if err != nil {
		t.Fatalf("encode calendar: %v", err)
	}
	return datatypes.JSON(raw)
}

func seedPost(t *testing.T, db *gorm.DB, post *model.Post) uuid.UUID {
	t.Helper()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.AuthorID == uuid.Nil {
		post.AuthorID = seedUser(t, db, model.UserStatusActive)
	}
	if post.Title == "" {
		post.Title = "test post"
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post.ID
}
