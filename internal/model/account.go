package model

import "strings"

// Credentials identify the single account a run checks in for.
type Credentials struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"-" yaml:"password"`
}

// WithDefaults fills blank fields from fallback.
func (c Credentials) WithDefaults(fallback Credentials) Credentials {
	out := c
	if strings.TrimSpace(out.Email) == "" {
		out.Email = fallback.Email
	}
	if strings.TrimSpace(out.Password) == "" {
		out.Password = fallback.Password
	}
	return out
}
