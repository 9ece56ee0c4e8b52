package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by the RoboVeda session cookie.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), which drive token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the account identifier (UUID) of the authenticated user.
	ID string `json:"id"`

	// Email is the account email, kept in the token so session lookups can
	// respond without a user-store round trip when the account is unchanged.
	Email string `json:"email"`

	// Username is the account display handle.
	Username string `json:"username"`
}
