package models

import "time"

// SocialNetworks lists the keys accepted in Profile.Social.
var SocialNetworks = []string{"youtube", "twitter", "facebook", "linkedin", "instagram"}

// Profile is the one-per-user developer profile document. Experience and
// Education are stored inline with the parent row and ordered newest first.
type Profile struct {
	ID             string            `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	UserID         string            `gorm:"column:user_id;type:varchar(36);uniqueIndex;not null" json:"-" bson:"user"`
	User           *UserRef          `gorm:"-" json:"user" bson:"-"`
	Company        string            `json:"company,omitempty" bson:"company,omitempty"`
	Website        string            `json:"website,omitempty" bson:"website,omitempty"`
	Location       string            `json:"location,omitempty" bson:"location,omitempty"`
	Status         string            `gorm:"not null" json:"status" bson:"status"`
	Skills         []string          `gorm:"serializer:json;type:jsonb" json:"skills" bson:"skills"`
	Bio            string            `json:"bio,omitempty" bson:"bio,omitempty"`
	GitHubUsername string            `gorm:"column:githubusername" json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Social         map[string]string `gorm:"serializer:json;type:jsonb" json:"social,omitempty" bson:"social,omitempty"`
	Experience     []Experience      `gorm:"serializer:json;type:jsonb" json:"experience" bson:"experience"`
	Education      []Education       `gorm:"serializer:json;type:jsonb" json:"education" bson:"education"`
	Date           time.Time         `json:"date" bson:"date"`
	Version        int64             `gorm:"not null;default:1" json:"-" bson:"version"`
}

// Experience is a single job entry on a profile.
type Experience struct {
	ID          string     `json:"_id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Company     string     `json:"company" bson:"company"`
	Location    string     `json:"location,omitempty" bson:"location,omitempty"`
	From        time.Time  `json:"from" bson:"from"`
	To          *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool       `json:"current" bson:"current"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is a single school entry on a profile.
type Education struct {
	ID           string     `json:"_id" bson:"_id"`
	School       string     `json:"school" bson:"school"`
	Degree       string     `json:"degree" bson:"degree"`
	FieldOfStudy string     `json:"fieldofstudy" bson:"fieldofstudy"`
	From         time.Time  `json:"from" bson:"from"`
	To           *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool       `json:"current" bson:"current"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
}

// ProfileFields is a sparse profile update. Nil pointers are left untouched
// on update and omitted on create.
type ProfileFields struct {
	Company        *string
	Website        *string
	Location       *string
	Status         *string
	Skills         []string
	Bio            *string
	GitHubUsername *string
	Social         map[string]string
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.User == nil && p.UserID != "" {
		p.User = &UserRef{ID: p.UserID}
	}
}

// Apply copies the supplied fields onto p.
func (f ProfileFields) Apply(p *Profile) {
	if f.Company != nil {
		p.Company = *f.Company
	}
	if f.Website != nil {
		p.Website = *f.Website
	}
	if f.Location != nil {
		p.Location = *f.Location
	}
	if f.Status != nil {
		p.Status = *f.Status
	}
	if f.Skills != nil {
		p.Skills = f.Skills
	}
	if f.Bio != nil {
		p.Bio = *f.Bio
	}
	if f.GitHubUsername != nil {
		p.GitHubUsername = *f.GitHubUsername
	}
	if f.Social != nil {
		p.Social = f.Social
	}
}

// Values maps the storage column name of each supplied field to its value.
func (f ProfileFields) Values() map[string]any {
	p := &Profile{}
	f.Apply(p)
	out := make(map[string]any)
	for _, col := range f.Columns() {
		switch col {
		case "company":
			out[col] = p.Company
		case "website":
			out[col] = p.Website
		case "location":
			out[col] = p.Location
		case "status":
			out[col] = p.Status
		case "skills":
			out[col] = p.Skills
		case "bio":
			out[col] = p.Bio
		case "githubusername":
			out[col] = p.GitHubUsername
		case "social":
			out[col] = p.Social
		}
	}
	return out
}

// Columns returns the storage column names of the supplied fields.
func (f ProfileFields) Columns() []string {
	var cols []string
	if f.Company != nil {
		cols = append(cols, "company")
	}
	if f.Website != nil {
		cols = append(cols, "website")
	}
	if f.Location != nil {
		cols = append(cols, "location")
	}
	if f.Status != nil {
		cols = append(cols, "status")
	}
	if f.Skills != nil {
		cols = append(cols, "skills")
	}
	if f.Bio != nil {
		cols = append(cols, "bio")
	}
	if f.GitHubUsername != nil {
		cols = append(cols, "githubusername")
	}
	if f.Social != nil {
		cols = append(cols, "social")
	}
	return cols
}
