package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload for the admin API.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
