// Package seed provides helpers to create demo data through the domain
// services. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"devhub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

var (
	statuses = []string{
		"Developer", "Junior Developer", "Senior Developer", "Manager",
		"Student or Learning", "Instructor or Teacher", "Intern", "Other",
	}
	skillPool = []string{
		"Go", "Rust", "TypeScript", "JavaScript", "Python", "PostgreSQL", "MongoDB",
		"Redis", "Docker", "Kubernetes", "React", "Vue", "Node.js", "GraphQL", "AWS", "Linux",
	}
	degrees = []string{"BSc", "MSc", "PhD", "Bootcamp Certificate", "Associate"}
	fields  = []string{"Computer Science", "Software Engineering", "Mathematics", "Physics", "Information Systems"}
)

// Factory builds request bodies filled with fake but plausible data.
type Factory struct {
	f   *gofakeit.Faker
	now time.Time
	seq int
}

// NewFactory returns a Factory. The same seed produces the same data.
func NewFactory(seed int64) *Factory {
	return &Factory{f: gofakeit.New(seed), now: time.Now().UTC()}
}

// Register builds a sign-up request with a unique email.
func (fa *Factory) Register() service.RegisterRequest {
	fa.seq++
	first, last := fa.f.FirstName(), fa.f.LastName()
	return service.RegisterRequest{
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s%d@devhub.test", strings.ToLower(first), strings.ToLower(last), fa.seq),
		Password: DefaultPassword,
	}
}

// Profile builds a profile body with three to six skills and a few social links.
func (fa *Factory) Profile() service.ProfileRequest {
	n := fa.f.Number(3, 6)
	skills := make(service.SkillList, 0, n)
	seen := make(map[string]bool, n)
	for len(skills) < n {
		s := fa.f.RandomString(skillPool)
		if !seen[s] {
			seen[s] = true
			skills = append(skills, s)
		}
	}

	company := fa.f.Company()
	website := fa.f.URL()
	location := fa.f.City()
	bio := fa.f.Sentence(12)
	github := fa.f.Username()
	twitter := "https://twitter.com/" + github
	linkedin := "https://linkedin.com/in/" + github

	return service.ProfileRequest{
		Status:         fa.f.RandomString(statuses),
		Skills:         skills,
		Company:        &company,
		Website:        &website,
		Location:       &location,
		Bio:            &bio,
		GitHubUsername: &github,
		Twitter:        &twitter,
		LinkedIn:       &linkedin,
	}
}

// Experience builds a job entry that ended in the past, or a current one.
func (fa *Factory) Experience(current bool) service.ExperienceRequest {
	from := fa.f.DateRange(fa.now.AddDate(-10, 0, 0), fa.now.AddDate(-1, 0, 0))
	req := service.ExperienceRequest{
		Title:       fa.f.JobTitle(),
		Company:     fa.f.Company(),
		Location:    fa.f.City(),
		From:        from.Format(time.DateOnly),
		Current:     current,
		Description: fa.f.Sentence(10),
	}
	if !current {
		to := fa.f.DateRange(from, fa.now).Format(time.DateOnly)
		req.To = &to
	}
	return req
}

// Education builds a finished school entry.
func (fa *Factory) Education() service.EducationRequest {
	from := fa.f.DateRange(fa.now.AddDate(-20, 0, 0), fa.now.AddDate(-4, 0, 0))
	to := from.AddDate(fa.f.Number(2, 5), 0, 0).Format(time.DateOnly)
	return service.EducationRequest{
		School:       fa.f.Company() + " University",
		Degree:       fa.f.RandomString(degrees),
		FieldOfStudy: fa.f.RandomString(fields),
		From:         from.Format(time.DateOnly),
		To:           &to,
	}
}

// PostText returns the body of a post.
func (fa *Factory) PostText() string {
	return fa.f.Paragraph(1, fa.f.Number(1, 4), 12, " ")
}

// CommentText returns the body of a comment.
func (fa *Factory) CommentText() string {
	return fa.f.Sentence(fa.f.Number(4, 14))
}

// Pick returns a random index below n.
func (fa *Factory) Pick(n int) int {
	return fa.f.Number(0, n-1)
}

// Chance reports true with probability pct/100.
func (fa *Factory) Chance(pct int) bool {
	return fa.f.Number(1, 100) <= pct
}
