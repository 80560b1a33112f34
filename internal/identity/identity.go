package identity

import (
	"context"
	"errors"
)

type Role string

const (
	RolePatient       Role = "patient"
	RoleStudent       Role = "student"
	RoleAcademicStaff Role = "academic_staff"
	RoleDoctor        Role = "doctor"
	RoleClinicalStaff Role = "clinical_staff"
	RoleAdmin         Role = "admin"
)

var ErrMissing = errors.New("identity: no identity in context")

// Identity is the authenticated caller. PatientID and DoctorID are set when
// the caller acts as that party.
type Identity struct {
	UserID    string
	Role      Role
	PatientID string
	DoctorID  string
}

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RolePatient, RoleStudent, RoleAcademicStaff, RoleDoctor, RoleClinicalStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

// IsStaff is true for roles that may act on any appointment.
func (i Identity) IsStaff() bool {
	return i.Role == RoleClinicalStaff || i.Role == RoleAdmin
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) IsDoctor() bool { return i.Role == RoleDoctor }

// ActsAsPatient covers students and academic staff booking for themselves.
func (i Identity) ActsAsPatient() bool {
	return i.Role == RolePatient || i.Role == RoleStudent || i.Role == RoleAcademicStaff
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrMissing
	}
	return id, nil
}
