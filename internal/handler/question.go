package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/maelig/balade-reservation/internal/queue"
	"github.com/maelig/balade-reservation/internal/validate"
)

// QuestionHandler forwards visitor questions to the office inbox.
// Nothing is stored; the message only travels through the email queue.
type QuestionHandler struct{}

func NewQuestionHandler() *QuestionHandler { return &QuestionHandler{} }

// Create handles POST /v1/questions.  The sanitized question is
// enqueued for the office inbox (CONTACT_EMAIL, falling back to
// SMTP_FROM) with the visitor's address as Reply-To.
func (h *QuestionHandler) Create(c echo.Context) error {
	var in validate.QuestionInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "corps de requete invalide")
	}
	clean, res := validate.Question(in)
	if !res.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "donnees invalides",
			"details": res.Errors,
		})
	}

	inbox := os.Getenv("CONTACT_EMAIL")
	if inbox == "" {
		inbox = os.Getenv("SMTP_FROM")
	}
	if inbox == "" {
		return fail(c, http.StatusInternalServerError, "boite de contact non configuree")
	}

	enqueueEmail(queue.EmailRequestedEvent{
		Kind:    queue.EmailQuestion,
		To:      inbox,
		ReplyTo: clean.Email,
		Nom:     clean.Nom,
		Message: clean.Message,
	})
	return c.JSON(http.StatusAccepted, echo.Map{
		"success": true,
		"message": "question envoyee",
	})
}
