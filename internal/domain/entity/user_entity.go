package entity

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authentication providers. A user created through Google carries a federated
// id; a local user carries a bcrypt password hash. Linking may leave a user
// with both, but credential verification always follows the provider.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the aggregate root for the user domain. Password holds a bcrypt
// hash, never plaintext; it is empty for federated-only accounts.
// TokenVersion only ever increases; bumping it invalidates every refresh
// token issued before the bump.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password,omitempty"`
	Avatar       string             `bson:"avatar,omitempty"`
	Provider     string             `bson:"provider"`
	ProviderID   string             `bson:"providerId,omitempty"`
	TokenVersion int                `bson:"tokenVersion"`
	Settings     Settings           `bson:"settings"`
	Habits       []Habit            `bson:"habits,omitempty"`
	MoodEntries  []MoodEntry        `bson:"moodEntries,omitempty"`
	Goals        []Goal             `bson:"goals,omitempty"`
	LastActive   time.Time          `bson:"lastActive,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// Settings are per-user preferences with defaults applied at registration.
type Settings struct {
	Theme         string `bson:"theme"`
	Notifications bool   `bson:"notifications"`
	WeeklyReport  bool   `bson:"weeklyReport"`
}

func DefaultSettings() Settings {
	return Settings{Theme: "light", Notifications: true, WeeklyReport: true}
}

// Habit is an embedded tracked habit document.
type Habit struct {
	Name          string    `bson:"name"`
	Description   string    `bson:"description,omitempty"`
	Frequency     string    `bson:"frequency"` // daily, weekly, monthly
	Target        int       `bson:"target"`
	CurrentStreak int       `bson:"currentStreak"`
	BestStreak    int       `bson:"bestStreak"`
	LastCompleted time.Time `bson:"lastCompleted,omitempty"`
	IsActive      bool      `bson:"isActive"`
	Category      string    `bson:"category,omitempty"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// MoodEntry is an embedded mood journal document.
type MoodEntry struct {
	Date       time.Time `bson:"date"`
	Mood       string    `bson:"mood"` // terrible, bad, neutral, good, excellent
	Notes      string    `bson:"notes,omitempty"`
	Activities []string  `bson:"activities,omitempty"`
}

// Goal is an embedded goal document with 0-100 progress.
type Goal struct {
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	TargetDate  time.Time `bson:"targetDate,omitempty"`
	IsCompleted bool      `bson:"isCompleted"`
	Progress    int       `bson:"progress"`
	Category    string    `bson:"category,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// NormalizeEmail trims and lowercases an email address. Every store write and
// lookup goes through this so case variants collide.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPassword reports whether a local credential is set for the user.
func (u *User) HasPassword() bool { return u.Password != "" }
