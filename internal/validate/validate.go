// Package validate checks and sanitizes incoming request payloads
// before they reach the inventory core.  Every public endpoint binds
// its body into an explicit typed struct, passes it through here, and
// only forwards the sanitized copy.  Validation errors are collected
// rather than returned one at a time so the front end can show them
// all at once.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

// Bounds applied to reservation and question payloads.
const (
	MaxNameLen    = 100
	MaxMessageLen = 2000
	MaxPersonnes  = 20 // one booking covers a family or small group, not a coach
	maxEmailLen   = 255
)

// emailRe is intentionally loose: one @ with something on both sides
// and a dot in the domain.  The confirmation email bouncing is the
// real validity check.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Result reports the outcome of a validation pass.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (r *Result) fail(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// ReservationInput is the raw public payload for creating a
// reservation.
type ReservationInput struct {
	BaladeID        uint64 `json:"balade_id"`
	Nom             string `json:"nom"`
	Prenom          string `json:"prenom"`
	Email           string `json:"email"`
	NombrePersonnes int    `json:"nombre_personnes"`
	Message         string `json:"message"`
}

// QuestionInput is the raw public payload for sending a question.
type QuestionInput struct {
	Nom     string `json:"nom"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Reservation sanitizes the input and checks every field.  It returns
// the cleaned copy together with the validation result; the copy is
// only meaningful when Result.Valid is true.
func Reservation(in ReservationInput) (ReservationInput, Result) {
	res := Result{Valid: true}
	in.Nom = CleanText(in.Nom, MaxNameLen)
	in.Prenom = CleanText(in.Prenom, MaxNameLen)
	in.Email = CleanEmail(in.Email)
	in.Message = CleanText(in.Message, MaxMessageLen)

	if in.BaladeID == 0 {
		res.fail("balade_id est requis")
	}
	if in.Nom == "" {
		res.fail("nom est requis")
	}
	if in.Prenom == "" {
		res.fail("prenom est requis")
	}
	if !ValidEmail(in.Email) {
		res.fail("email invalide")
	}
	if in.NombrePersonnes < 1 {
		res.fail("nombre_personnes doit etre au moins 1")
	} else if in.NombrePersonnes > MaxPersonnes {
		res.fail("nombre_personnes est trop grand")
	}
	return in, res
}

// Question sanitizes and checks a question payload.
func Question(in QuestionInput) (QuestionInput, Result) {
	res := Result{Valid: true}
	in.Nom = CleanText(in.Nom, MaxNameLen)
	in.Email = CleanEmail(in.Email)
	in.Message = CleanText(in.Message, MaxMessageLen)

	if in.Nom == "" {
		res.fail("nom est requis")
	}
	if !ValidEmail(in.Email) {
		res.fail("email invalide")
	}
	if in.Message == "" {
		res.fail("message est requis")
	}
	return in, res
}

// CleanText trims the string, strips control characters and truncates
// it to max runes.  Newlines survive so multi-line messages keep their
// shape.
func CleanText(s string, max int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	runes := []rune(out)
	if len(runes) > max {
		out = string(runes[:max])
	}
	return out
}

// CleanEmail lowercases and trims an email address.
func CleanEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether the address looks deliverable.
func ValidEmail(s string) bool {
	return s != "" && len(s) <= maxEmailLen && emailRe.MatchString(s)
}
