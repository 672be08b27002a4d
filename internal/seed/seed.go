// Package seed populates the database with generated development data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// SeedPassword is the shared plaintext password for all generated users.
const SeedPassword = "password123"

// Seeder generates users and posts for development databases.
type Seeder struct {
	db           *gorm.DB
	passwordHash string
}

// NewSeeder returns a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) (*Seeder, error) {
	// Hash once; bcrypt is slow enough that per-user hashing makes large
	// seeds painful.
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing seed password: %w", err)
	}
	return &Seeder{db: db, passwordHash: hash}, nil
}

// ClearAll removes all seeded data. Posts go first to satisfy the foreign
// key.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}
	log.Println("Cleared existing data")
	return nil
}

// SeedUsers creates n users with generated usernames.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Password: s.passwordHash,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread randomly across the given users, with
// creation times scattered over the last 90 days so statistics queries have
// something to chew on.
func (s *Seeder) SeedPosts(users []models.User, n int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attach posts to")
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[rand.Intn(len(users))]
		post := models.Post{
			Title:     gofakeit.Sentence(rand.Intn(6) + 3),
			Content:   gofakeit.Paragraph(1, rand.Intn(4)+1, rand.Intn(10)+5, " "),
			UserID:    owner.ID,
			CreatedAt: time.Now().UTC().AddDate(0, 0, -rand.Intn(90)),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("creating post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))
	return posts, nil
}
