package types

import "time"

// Theme is the client colour scheme preference.
type Theme string

// Supported themes
const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// User is the application-side record of a Supabase identity.
type User struct {
	ID         string    `json:"_id" bson:"_id"`
	SupabaseID string    `json:"supabaseId" bson:"supabaseId"`
	Email      string    `json:"email" bson:"email"`
	Profile    Profile   `json:"profile" bson:"profile"`
	Settings   Settings  `json:"settings" bson:"settings"`
	Usage      Usage     `json:"usage" bson:"usage"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Profile holds display information.
type Profile struct {
	FullName  string `json:"fullName,omitempty" bson:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
}

// Settings holds client preferences.
type Settings struct {
	Theme               Theme `json:"theme" bson:"theme"`
	OnboardingCompleted bool  `json:"onboardingCompleted" bson:"onboardingCompleted"`
}

// Usage tracks activity counters.
type Usage struct {
	GenerationsCount int       `json:"generationsCount" bson:"generationsCount"`
	LastActiveAt     time.Time `json:"lastActiveAt" bson:"lastActiveAt"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem}
}
