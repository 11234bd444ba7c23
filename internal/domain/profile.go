package domain

import "time"

const (
	GenderMale   = "M"
	GenderFemale = "F"
	LookingAny   = "A"
)

type Profile struct {
	ProfileID  string   `json:"id" dynamodbav:"profile_id"`
	UserID     string   `json:"user_id" dynamodbav:"user_id"`
	Name       string   `json:"name" dynamodbav:"name"`
	Age        *int     `json:"age" dynamodbav:"age,omitempty"`
	Bio        string   `json:"bio" dynamodbav:"bio"`
	Gender     string   `json:"gender" dynamodbav:"gender"`
	LookingFor string   `json:"looking_for" dynamodbav:"looking_for"`
	Latitude   *float64 `json:"latitude" dynamodbav:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude" dynamodbav:"longitude,omitempty"`
	// ImageKey is the object-store key; ImageData holds the base64 payload when no bucket is configured.
	ImageKey  string    `json:"-" dynamodbav:"image_key,omitempty"`
	ImageData string    `json:"-" dynamodbav:"image_data,omitempty"`
	ImageURL  string    `json:"image_url,omitempty" dynamodbav:"-"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

func (p *Profile) HasImage() bool { return p.ImageKey != "" || p.ImageData != "" }

// PreferredGender returns the gender the profile owner wants to see, or "" for no filter.
func (p *Profile) PreferredGender() string {
	switch p.LookingFor {
	case GenderMale, GenderFemale:
		return p.LookingFor
	default:
		return ""
	}
}

type CreateProfileRequest struct {
	Name         string   `json:"name" validate:"max=100"`
	Age          *int     `json:"age" validate:"omitempty,gte=18,lte=100"`
	Bio          string   `json:"bio" validate:"max=1000"`
	Gender       string   `json:"gender" validate:"omitempty,oneof=M F"`
	LookingFor   string   `json:"looking_for" validate:"omitempty,oneof=M F A"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ProfileImage *string  `json:"profile_image"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Age          *int     `json:"age" validate:"omitempty,gte=18,lte=100"`
	Bio          *string  `json:"bio" validate:"omitempty,max=1000"`
	Gender       *string  `json:"gender" validate:"omitempty,oneof=M F"`
	LookingFor   *string  `json:"looking_for" validate:"omitempty,oneof=M F A"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ProfileImage *string  `json:"profile_image"`
}

func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Bio == nil && p.Gender == nil &&
		p.LookingFor == nil && p.Latitude == nil && p.Longitude == nil && p.ProfileImage == nil
}
