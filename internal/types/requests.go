package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateResumeRequest represents the request to create a resume.
type CreateResumeRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=200"`
}

// UpdateResumeRequest represents a partial resume update. Nil fields are left unchanged.
type UpdateResumeRequest struct {
	Title          *string         `json:"title,omitempty" validate:"omitempty,max=200"`
	RawData        *string         `json:"rawData,omitempty"`
	StructuredData *StructuredData `json:"structuredData,omitempty"`
	Status         *ResumeStatus   `json:"status,omitempty" validate:"omitempty,oneof=draft analyzed exported"`
}

// UpdateProfileRequest holds optional profile fields.
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName,omitempty" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// UpdateSettingsRequest holds optional settings fields.
type UpdateSettingsRequest struct {
	Theme               *Theme `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	OnboardingCompleted *bool  `json:"onboardingCompleted,omitempty"`
}

// UpdateUserRequest represents a partial profile/settings update.
type UpdateUserRequest struct {
	Profile  *UpdateProfileRequest  `json:"profile,omitempty"`
	Settings *UpdateSettingsRequest `json:"settings,omitempty"`
}

// ImportURLRequest asks the server to replace a resume's raw text with the text of a web page.
type ImportURLRequest struct {
	URL        string `json:"url" validate:"required,url"`
	UseBrowser bool   `json:"useBrowser,omitempty"`
}

var validate = validator.New()

// Validate validates the CreateResumeRequest using the validator.
func (r *CreateResumeRequest) Validate() error {
	return validate.Struct(r)
}

// ResolvedTitle returns the requested title or the default when absent or blank.
func (r *CreateResumeRequest) ResolvedTitle() string {
	if r == nil || r.Title == nil || strings.TrimSpace(*r.Title) == "" {
		return DefaultResumeTitle
	}
	return strings.TrimSpace(*r.Title)
}

// Validate validates the UpdateResumeRequest using the validator.
func (r *UpdateResumeRequest) Validate() error {
	return validate.Struct(r)
}

// Apply copies the provided fields onto resume.
func (r *UpdateResumeRequest) Apply(resume *Resume) {
	if r.Title != nil {
		resume.Title = *r.Title
	}
	if r.RawData != nil {
		resume.RawData = *r.RawData
	}
	if r.StructuredData != nil {
		resume.StructuredData = r.StructuredData
	}
	if r.Status != nil {
		resume.Status = *r.Status
	}
}

// Validate validates the UpdateUserRequest using the validator.
func (r *UpdateUserRequest) Validate() error {
	if r.Profile != nil {
		if err := validate.Struct(r.Profile); err != nil {
			return err
		}
	}
	if r.Settings != nil {
		if err := validate.Struct(r.Settings); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the provided profile and settings fields into user.
func (r *UpdateUserRequest) Apply(user *User) {
	if p := r.Profile; p != nil {
		if p.FullName != nil {
			user.Profile.FullName = *p.FullName
		}
		if p.AvatarURL != nil {
			user.Profile.AvatarURL = *p.AvatarURL
		}
	}
	if s := r.Settings; s != nil {
		if s.Theme != nil {
			user.Settings.Theme = *s.Theme
		}
		if s.OnboardingCompleted != nil {
			user.Settings.OnboardingCompleted = *s.OnboardingCompleted
		}
	}
}

// Validate validates the ImportURLRequest using the validator.
func (r *ImportURLRequest) Validate() error {
	return validate.Struct(r)
}
