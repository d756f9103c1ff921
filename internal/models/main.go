// Package models defines the core data structures for users, sessions,
// and managed objects.
package models

import "time"

// Role identifies the privilege level of a user account.
type Role string

const (
	// RoleUser is a regular account without administrative rights.
	RoleUser Role = "user"
	// RoleAdmin may manage accounts and perform privileged status transitions.
	RoleAdmin Role = "admin"
)

// User represents an application account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the unique login address.
	Email string `json:"email"`
	// Name is the display name.
	Name string `json:"name"`
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte `json:"-"`
	// Role is either "user" or "admin".
	Role Role `json:"role"`
	// Active is false for admin-provisioned accounts awaiting signup.
	Active bool `json:"active"`
	// IsTempPassword marks a provisioned or reset credential that must be changed.
	IsTempPassword bool `json:"isTempPassword"`
}

// Session is a bearer-token grant with a fixed lifetime.
type Session struct {
	// ID is the unique identifier for the session.
	ID string `json:"id"`
	// UserID references the owning user.
	UserID string `json:"userId"`
	// Token is the opaque bearer credential presented by clients.
	Token string `json:"token"`
	// ExpiresAt is the absolute expiry; sessions are never renewed.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Status is the lifecycle state of an object. The literal values are the
// fixed domain strings used on the wire and in persistence.
type Status string

const (
	// StatusDraft is the initial, freely editable state.
	StatusDraft Status = "entwurf"
	// StatusReleased is submitted for processing; locked for non-admins.
	StatusReleased Status = "freigegeben"
	// StatusUnderReview is being checked by an admin; locked for non-admins.
	StatusUnderReview Status = "in_überprüfung"
	// StatusRejected was sent back by an admin.
	StatusRejected Status = "zurückgewiesen"
	// StatusCompleted is terminal and fully frozen, including for admins.
	StatusCompleted Status = "abgeschlossen"
	// StatusDeleted is the soft-delete state; records are never physically removed.
	StatusDeleted Status = "gelöscht"
)

// Valid reports whether s is one of the six known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReleased, StatusUnderReview, StatusRejected, StatusCompleted, StatusDeleted:
		return true
	}
	return false
}

// Address is the postal address of an object.
type Address struct {
	Street     string `json:"street"`
	Zip        string `json:"zip"`
	City       string `json:"city"`
	Additional string `json:"additional,omitempty"`
}

// Person is a contact attached to an object (tenant, owner, caretaker).
type Person struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Key is a handed-over key record.
type Key struct {
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Number string `json:"number,omitempty"`
}

// Room is a room inventory record.
type Room struct {
	Name      string `json:"name"`
	Condition string `json:"condition,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Meter is a utility meter reading.
type Meter struct {
	Type    string `json:"type"`
	Number  string `json:"number"`
	Reading string `json:"reading,omitempty"`
}

// Object is the managed property/unit record.
type Object struct {
	// ID is the unique identifier for the object.
	ID string `json:"id"`
	// Title is the display name of the object.
	Title string `json:"title"`
	// Address is the postal address.
	Address Address `json:"address"`
	// Floor and Room locate the unit within a building, when applicable.
	Floor string `json:"floor,omitempty"`
	Room  string `json:"room,omitempty"`
	// CreatedBy references the creating user.
	CreatedBy string `json:"createdBy"`
	// AssignedTo lists additional users granted access, if any.
	AssignedTo []string `json:"assignedTo,omitempty"`
	// Status is the current lifecycle state.
	Status Status `json:"status"`
	// Nested collections; order within each slice is significant because
	// images reference entries by position.
	People []Person `json:"people,omitempty"`
	Keys   []Key    `json:"keys,omitempty"`
	Rooms  []Room   `json:"rooms,omitempty"`
	Meters []Meter  `json:"meters,omitempty"`
	// Notes is free-form text.
	Notes string `json:"notes,omitempty"`
	// SignatureKey references the signature image in blob storage, if captured.
	SignatureKey string `json:"signatureKey,omitempty"`
	// Version is incremented on every update and checked at write time.
	Version int64 `json:"version"`
	// UpdatedAt is the timestamp of the last mutation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Section identifies which nested collection an image belongs to.
// People entries never carry images.
type Section string

const (
	SectionKeys   Section = "keys"
	SectionRooms  Section = "rooms"
	SectionMeters Section = "meters"
)

// Valid reports whether s is a known image section.
func (s Section) Valid() bool {
	switch s {
	case SectionKeys, SectionRooms, SectionMeters:
		return true
	}
	return false
}

// ObjectImage associates an uploaded image with an object and, optionally,
// a single entry within a nested collection.
type ObjectImage struct {
	// ID is the unique identifier for the image record.
	ID string `json:"id"`
	// ObjectID references the owning object.
	ObjectID string `json:"objectId"`
	// Section is the nested collection the image documents.
	Section Section `json:"section"`
	// SectionIndex is the position within that collection, or nil when the
	// image belongs to the section as a whole.
	SectionIndex *int `json:"sectionIndex,omitempty"`
	// StorageKey references the blob in object storage.
	StorageKey string `json:"storageKey"`
	// Filename is the original upload name.
	Filename string `json:"filename"`
	// CreatedAt is the upload timestamp.
	CreatedAt time.Time `json:"createdAt"`
}
