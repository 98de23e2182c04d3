package domain

import "time"

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Address      string    `json:"address,omitempty" gorm:"type:varchar(500)"`
	City         string    `json:"city,omitempty" gorm:"type:varchar(100)"`
	State        string    `json:"state,omitempty" gorm:"type:varchar(100)"`
	ZipCode      string    `json:"zipCode,omitempty" gorm:"type:varchar(20)"`
	Country      string    `json:"country,omitempty" gorm:"type:varchar(100)"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	ZipCode   *string
	Country   *string
}

// Principal is the identity carried by a verified bearer token.
type Principal struct {
	UserID  uint64
	IsAdmin bool
}
