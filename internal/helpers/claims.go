package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextUserKey is the gin context key holding the caller's *CustomClaims.
const ContextUserKey = "user"

// CustomClaims is the session payload carried in the access token.
type CustomClaims struct {
	UserID      string `json:"_id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	IsOrganizer bool   `json:"isOrganizer"`
	jwt.RegisteredClaims
}

func (c *CustomClaims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.UserID)
}

func (c *CustomClaims) IsOwner(userID primitive.ObjectID) bool {
	return c.UserID == userID.Hex()
}
