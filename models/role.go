package models

import "strings"

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts any casing; unknown values are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role Role
}

func (a Actor) IsDoctor() bool  { return a.Role == RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == RolePatient }
func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }

// Owns reports whether the actor is the user identified by id.
func (a Actor) Owns(id uint) bool { return a.ID != 0 && a.ID == id }

// ActsAsDoctor reports whether the actor is the given doctor.
func (a Actor) ActsAsDoctor(doctorID uint) bool { return a.IsDoctor() && a.Owns(doctorID) }

// ActsAsPatient reports whether the actor is the given patient.
func (a Actor) ActsAsPatient(patientID uint) bool { return a.IsPatient() && a.Owns(patientID) }
