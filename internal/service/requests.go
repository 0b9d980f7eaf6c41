package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"devhub/internal/models"
	"devhub/internal/validation"
)

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required,min=6" msg:"Please enter a password with 6 or more characters"`
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// SkillList decodes either a comma-separated string or a JSON array of
// strings. Entries are trimmed and blanks dropped.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	var raw []string
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		raw = strings.Split(joined, ",")
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(SkillList, 0, len(raw))
	for _, skill := range raw {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	*s = out
	return nil
}

// ProfileRequest is the body of POST /api/profile. Omitted optional fields
// are left untouched on an existing profile.
type ProfileRequest struct {
	Company        *string   `json:"company"`
	Website        *string   `json:"website"`
	Location       *string   `json:"location"`
	Bio            *string   `json:"bio"`
	Status         string    `json:"status" validate:"notblank" msg:"Status is required"`
	GitHubUsername *string   `json:"githubusername"`
	Skills         SkillList `json:"skills" validate:"notblank" msg:"Skills is required"`
	YouTube        *string   `json:"youtube"`
	Twitter        *string   `json:"twitter"`
	Facebook       *string   `json:"facebook"`
	LinkedIn       *string   `json:"linkedin"`
	Instagram      *string   `json:"instagram"`
}

// Fields converts the request into a sparse profile update. Supplying any
// social link replaces the whole social map.
func (r ProfileRequest) Fields() models.ProfileFields {
	status := strings.TrimSpace(r.Status)
	fields := models.ProfileFields{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Bio:            r.Bio,
		Status:         &status,
		GitHubUsername: r.GitHubUsername,
		Skills:         []string(r.Skills),
	}

	links := map[string]*string{
		"youtube":   r.YouTube,
		"twitter":   r.Twitter,
		"facebook":  r.Facebook,
		"linkedin":  r.LinkedIn,
		"instagram": r.Instagram,
	}
	for _, network := range models.SocialNetworks {
		v := links[network]
		if v == nil {
			continue
		}
		if fields.Social == nil {
			fields.Social = make(map[string]string)
		}
		if link := strings.TrimSpace(*v); link != "" {
			fields.Social[network] = link
		}
	}
	return fields
}

// ExperienceRequest is the body of PUT /api/profile/experience.
type ExperienceRequest struct {
	Title       string  `json:"title" validate:"notblank" msg:"Title is required"`
	Company     string  `json:"company" validate:"notblank" msg:"Company is required"`
	Location    string  `json:"location"`
	From        string  `json:"from" validate:"required,isodate" msg:"From date is required"`
	To          *string `json:"to" validate:"omitempty,isodate"`
	Current     bool    `json:"current"`
	Description string  `json:"description"`
}

// Entry converts a validated request into a profile entry without an id.
func (r ExperienceRequest) Entry() (models.Experience, error) {
	from, to, err := parseRange(r.From, r.To)
	if err != nil {
		return models.Experience{}, err
	}
	return models.Experience{
		Title:       strings.TrimSpace(r.Title),
		Company:     strings.TrimSpace(r.Company),
		Location:    r.Location,
		From:        from,
		To:          to,
		Current:     r.Current,
		Description: r.Description,
	}, nil
}

// EducationRequest is the body of PUT /api/profile/education.
type EducationRequest struct {
	School       string  `json:"school" validate:"notblank" msg:"School is required"`
	Degree       string  `json:"degree" validate:"notblank" msg:"Degree is required"`
	FieldOfStudy string  `json:"fieldofstudy" validate:"notblank" msg:"Field of study is required"`
	From         string  `json:"from" validate:"required,isodate" msg:"From date is required"`
	To           *string `json:"to" validate:"omitempty,isodate"`
	Current      bool    `json:"current"`
	Description  string  `json:"description"`
}

// Entry converts a validated request into a profile entry without an id.
func (r EducationRequest) Entry() (models.Education, error) {
	from, to, err := parseRange(r.From, r.To)
	if err != nil {
		return models.Education{}, err
	}
	return models.Education{
		School:       strings.TrimSpace(r.School),
		Degree:       strings.TrimSpace(r.Degree),
		FieldOfStudy: strings.TrimSpace(r.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      r.Current,
		Description:  r.Description,
	}, nil
}

// TextRequest is the body of POST /api/posts and PUT /api/posts/comment/:id.
type TextRequest struct {
	Text string `json:"text" validate:"notblank,max=10000" msg:"Text is required"`
}

func parseRange(from string, to *string) (time.Time, *time.Time, error) {
	start, err := validation.ParseDate(from)
	if err != nil {
		return time.Time{}, nil, models.NewFieldValidationError([]models.FieldError{
			{Field: "from", Message: "From date is required"},
		})
	}
	if to == nil || strings.TrimSpace(*to) == "" {
		return start, nil, nil
	}
	end, err := validation.ParseDate(*to)
	if err != nil {
		return time.Time{}, nil, models.NewFieldValidationError([]models.FieldError{
			{Field: "to", Message: "To must be a date (YYYY-MM-DD)"},
		})
	}
	return start, &end, nil
}
