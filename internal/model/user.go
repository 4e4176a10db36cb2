package model

import "time"

// User represents an account created on first Google sign-in.
// Email is the natural key used to reconcile repeated sign-ins.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:255;not null;default:''"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	ProfilePicture *string   `json:"profile_picture" gorm:"size:1024"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
