package models

import (
	"time"
)

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserPending  UserStatus = "PENDING"
	UserRejected UserStatus = "REJECTED"
	UserInactive UserStatus = "INACTIVE"
)

type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string         `json:"-" gorm:"not null"`
	DNI           string         `json:"dni" gorm:"column:dni;uniqueIndex;not null"`
	Name          string         `json:"name"`
	Surname       string         `json:"surname"`
	Phone         string         `json:"phone"`
	Birthdate     *time.Time     `json:"birthdate,omitempty"`
	Gender        string         `json:"gender"`
	Role          Role           `json:"role" gorm:"type:varchar(16);not null;index"`
	Status        UserStatus     `json:"status" gorm:"type:varchar(16);not null;index"`
	EmailVerified bool           `json:"email_verified" gorm:"default:false"`
	OTP           string         `json:"-"`
	OTPExpiresAt  *time.Time     `json:"-"`
	DoctorProfile *DoctorProfile `json:"doctor_profile,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}

func (u *User) IsActive() bool { return u.Status == UserActive }

// Actor returns the identity this user acts with.
func (u *User) Actor() Actor { return Actor{ID: u.ID, Role: u.Role} }
