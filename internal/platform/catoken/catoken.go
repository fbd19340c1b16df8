// Package catoken verifies the signed instance tokens presented to the
// registration endpoints. A token authenticates one CA: it names the app
// (publisher + local name) and the instance (owner + local name). The
// engine itself only ever sees names derived from a verified token.
package catoken

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calyptra/units-backend/internal/domain/names"
)

type Claims struct {
	AppPublisher string `json:"appPublisher"`
	AppLocalName string `json:"appLocalName"`
	CAOwner      string `json:"caOwner"`
	CALocalName  string `json:"caLocalName"`
	jwt.RegisteredClaims
}

// LeaseName maps the claims to the lease naming scheme.
func (c *Claims) LeaseName() names.LeaseName {
	return names.LeaseName{
		AppPublisher: c.AppPublisher,
		AppLocalName: c.AppLocalName,
		CAOwner:      c.CAOwner,
		CALocalName:  c.CALocalName,
	}
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a serialized token, requiring the HS256
// algorithm and all four name claims.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.AppPublisher == "" || claims.AppLocalName == "" ||
		claims.CAOwner == "" || claims.CALocalName == "" {
		return nil, fmt.Errorf("token missing name claims")
	}
	return claims, nil
}

// Sign serializes claims with the verifier's secret. Used by tests and
// tooling; production tokens come from the accounts service.
func (v *Verifier) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
