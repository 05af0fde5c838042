package model

import "time"

// Reservation statuses.  The stored values are the French domain terms
// used by the front office, without accents so they stay ASCII-safe in
// the database and in JSON.
//
// Allowed transitions: en_attente -> confirmee (admin acceptance) and
// en_attente|confirmee -> annulee (cancellation, terminal).  Nothing
// leaves annulee.
const (
	StatutEnAttente = "en_attente" // awaiting admin acceptance; seats already taken
	StatutConfirmee = "confirmee"  // accepted by an admin
	StatutAnnulee   = "annulee"    // cancelled; seats credited back
)

// Reservation records a booking request against a balade for a given
// number of people.  Seats are debited when the reservation is created
// and credited back when it is cancelled; a reservation therefore holds
// its seats while in en_attente or confirmee.
//
// Fields:
//
//	ID              – primary key identifier.
//	BaladeID        – balade being booked.
//	Nom, Prenom     – participant last and first name.
//	Email           – contact address for confirmations.
//	NombrePersonnes – number of people covered, always >= 1, never
//	                  changed after creation.
//	Message         – free-text note from the visitor.
//	Statut          – one of the Statut* constants above.
//	Present         – attendance flag set by an admin on the day of the
//	                  walk (nil until recorded).
//	Reference       – opaque public handle (UUID) given back to the
//	                  visitor instead of the sequential ID.
//	PaymentRef      – external payment reference, if any.
//	MontantCents    – total amount in minor currency units.  Integer on
//	                  purpose: no floating point money.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    `json:"id"`                    // reservations.id
	BaladeID        uint64    `json:"balade_id"`             // reservations.balade_id
	Nom             string    `json:"nom"`                   // reservations.nom
	Prenom          string    `json:"prenom"`                // reservations.prenom
	Email           string    `json:"email"`                 // reservations.email
	NombrePersonnes int       `json:"nombre_personnes"`      // reservations.nombre_personnes
	Message         string    `json:"message"`               // reservations.message
	Statut          string    `json:"statut"`                // reservations.statut
	Present         *bool     `json:"present,omitempty"`     // reservations.present (nullable)
	Reference       string    `json:"reference"`             // reservations.reference
	PaymentRef      *string   `json:"payment_ref,omitempty"` // reservations.payment_ref (nullable)
	MontantCents    uint32    `json:"montant_cents"`         // reservations.montant_cents
	CreatedAt       time.Time `json:"created_at"`            // reservations.created_at
	UpdatedAt       time.Time `json:"updated_at"`            // reservations.updated_at
}

// Active reports whether the reservation currently holds seats on its
// balade, i.e. it has not been cancelled.
func (r *Reservation) Active() bool { return r.Statut != StatutAnnulee }
