package model

import "time"

// Balade represents a scheduled guided walking tour with a fixed seat
// capacity.  Capacity is set once at creation; the live availability
// counter is only ever mutated by the inventory manager.
//
// Fields:
//
//	ID                – primary key identifier.
//	Theme             – theme or title of the walk.
//	Date              – calendar date of the walk.
//	Heure             – start time as displayed to visitors (e.g. "14:30").
//	Lieu              – meeting point.
//	PlacesInitiales   – immutable capacity, always >= 0.
//	PlacesDisponibles – remaining seats.  Held as a signed integer on
//	                    purpose: a drifted or manually edited row can
//	                    carry a negative value until a recount repairs
//	                    it, and the repair report must show what was
//	                    actually stored.
//	CreatedAt         – creation timestamp.
//	UpdatedAt         – last update timestamp.
type Balade struct {
	ID                uint64    `json:"id"`                 // balades.id
	Theme             string    `json:"theme"`              // balades.theme
	Date              time.Time `json:"date"`               // balades.date_balade
	Heure             string    `json:"heure"`              // balades.heure
	Lieu              string    `json:"lieu"`               // balades.lieu
	PlacesInitiales   int       `json:"places_initiales"`   // balades.places_initiales
	PlacesDisponibles int       `json:"places_disponibles"` // balades.places_disponibles
	CreatedAt         time.Time `json:"created_at"`         // balades.created_at
	UpdatedAt         time.Time `json:"updated_at"`         // balades.updated_at
}

// Complete reports whether the balade has no seats left.
func (b *Balade) Complete() bool { return b.PlacesDisponibles <= 0 }
