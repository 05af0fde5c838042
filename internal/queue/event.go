// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailKind selects the template the mailer renders for an outbound
// message.
type EmailKind string

const (
	// EmailReservationRecue acknowledges a new reservation while it
	// waits for admin acceptance.
	EmailReservationRecue EmailKind = "reservation_recue"
	// EmailReservationConfirmee tells the visitor an admin accepted
	// their reservation.
	EmailReservationConfirmee EmailKind = "reservation_confirmee"
	// EmailReservationAnnulee tells the visitor their reservation was
	// cancelled and the seats released.
	EmailReservationAnnulee EmailKind = "reservation_annulee"
	// EmailQuestion forwards a visitor's question to the office inbox.
	EmailQuestion EmailKind = "question"
)

// EmailRequestedEvent is published whenever the application wants an
// email sent.  Delivery is asynchronous on purpose: a reservation that
// is committed to storage is never rolled back because its
// confirmation email failed, so the HTTP handlers only enqueue and the
// consumer deals with SMTP.
type EmailRequestedEvent struct {
	Kind            EmailKind `json:"kind"`
	To              string    `json:"to"`
	ReplyTo         string    `json:"reply_to,omitempty"`
	Nom             string    `json:"nom"`
	Prenom          string    `json:"prenom"`
	BaladeTheme     string    `json:"balade_theme,omitempty"`
	BaladeDate      string    `json:"balade_date,omitempty"`
	BaladeHeure     string    `json:"balade_heure,omitempty"`
	BaladeLieu      string    `json:"balade_lieu,omitempty"`
	NombrePersonnes int       `json:"nombre_personnes,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	Message         string    `json:"message,omitempty"`
	RequestedAt     string    `json:"requested_at"`
}
