package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name" validate:"required,min=3"`
	Email            string             `bson:"email" json:"email" validate:"required,email"`
	Username         string             `bson:"username" json:"username" validate:"required,username"`
	IsOrganizer      bool               `bson:"isOrganizer" json:"isOrganizer"`
	Avatar           string             `bson:"avatar" json:"avatar"`
	Password         string             `bson:"password" json:"-"`
	VerifyCode       string             `bson:"verifyCode" json:"-"`
	VerifyCodeExpiry time.Time          `bson:"verifyCodeExpiry" json:"-"`
	IsVerified       bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the subset of a user returned by profile lookups.
type PublicProfile struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsOrganizer bool   `json:"isOrganizer"`
	AvatarURL   string `json:"avatarURL"`
	IsVerified  bool   `json:"isVerified"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		IsOrganizer: u.IsOrganizer,
		AvatarURL:   u.Avatar,
		IsVerified:  u.IsVerified,
	}
}

// CheckVerifyCode reports whether code unlocks the account at now. Both the
// code match and the expiry must hold; an expired code is reported as such
// even when the digits are wrong.
func (u *User) CheckVerifyCode(code string, now time.Time) error {
	expired := !u.VerifyCodeExpiry.After(now)
	if expired {
		return ErrCodeExpired
	}
	if u.VerifyCode != code {
		return ErrInvalidCode
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
