package jwt

import (
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("token has no subject")

// Identity is what the session service trusts from an identity provider token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// ValidateToken checks an HS256 bearer token signed with JWT_SECRET.
func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrMissingSubject
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return Identity{Subject: sub, Email: email, Name: name}, nil
}
