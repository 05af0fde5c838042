package validate

import (
	"strings"
	"testing"
)

func TestReservation(t *testing.T) {
	t.Parallel()

	valid := ReservationInput{
		BaladeID:        1,
		Nom:             "  Martin ",
		Prenom:          "Claire",
		Email:           " Claire.Martin@Example.FR ",
		NombrePersonnes: 2,
		Message:         "Avec une poussette.",
	}

	t.Run("sanitizes a valid payload", func(t *testing.T) {
		out, res := Reservation(valid)
		if !res.Valid {
			t.Fatalf("expected valid, got errors %v", res.Errors)
		}
		if out.Nom != "Martin" {
			t.Errorf("nom not trimmed: %q", out.Nom)
		}
		if out.Email != "claire.martin@example.fr" {
			t.Errorf("email not normalized: %q", out.Email)
		}
	})

	t.Run("collects every error at once", func(t *testing.T) {
		_, res := Reservation(ReservationInput{Email: "nope", NombrePersonnes: 0})
		if res.Valid {
			t.Fatal("expected invalid")
		}
		if len(res.Errors) < 4 {
			t.Fatalf("expected all field errors reported, got %v", res.Errors)
		}
	})

	for _, tc := range []struct {
		name   string
		mutate func(*ReservationInput)
	}{
		{"missing balade", func(in *ReservationInput) { in.BaladeID = 0 }},
		{"blank nom", func(in *ReservationInput) { in.Nom = "   " }},
		{"bad email", func(in *ReservationInput) { in.Email = "claire@nodomain" }},
		{"zero personnes", func(in *ReservationInput) { in.NombrePersonnes = 0 }},
		{"too many personnes", func(in *ReservationInput) { in.NombrePersonnes = MaxPersonnes + 1 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if _, res := Reservation(in); res.Valid {
				t.Fatalf("expected invalid payload")
			}
		})
	}

	t.Run("strips control characters and truncates", func(t *testing.T) {
		in := valid
		in.Message = "ligne 1\nligne 2\x00\x1b" + strings.Repeat("a", MaxMessageLen*2)
		out, res := Reservation(in)
		if !res.Valid {
			t.Fatalf("unexpected errors %v", res.Errors)
		}
		if strings.ContainsAny(out.Message, "\x00\x1b") {
			t.Error("control characters survived sanitization")
		}
		if !strings.Contains(out.Message, "\n") {
			t.Error("newlines must survive sanitization")
		}
		if got := len([]rune(out.Message)); got > MaxMessageLen {
			t.Errorf("message not truncated: %d runes", got)
		}
	})
}

func TestQuestion(t *testing.T) {
	t.Parallel()

	out, res := Question(QuestionInput{
		Nom:     "Durand",
		Email:   "PAUL@example.fr",
		Message: "La balade est-elle accessible en fauteuil ?",
	})
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
	if out.Email != "paul@example.fr" {
		t.Errorf("email not normalized: %q", out.Email)
	}

	if _, res := Question(QuestionInput{Email: "paul@example.fr"}); res.Valid {
		t.Fatal("expected invalid when nom and message missing")
	}
}
