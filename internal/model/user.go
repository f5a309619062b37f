package model

import (
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName prefers the full name and falls back to the email address.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// Initials returns up to two upper-case letters for avatars.
func (u User) Initials() string {
	var out []rune
	for _, part := range []string{u.FirstName, u.LastName} {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, []rune(strings.ToUpper(part))[0])
		}
	}
	if len(out) == 0 {
		local := strings.TrimSpace(strings.SplitN(u.Email, "@", 2)[0])
		if local != "" {
			out = append(out, []rune(strings.ToUpper(local))[0])
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
