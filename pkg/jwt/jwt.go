package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// El cliente no posee el secreto de firma: la validación criptográfica es
// responsabilidad del servidor. Aquí solo se inspeccionan claims sin verificar
// para descartar localmente tokens vencidos antes de usarlos.

// Claims subconjunto de claims que el cliente inspecciona del token de sesión.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // cero si el token no trae exp
	IssuedAt  time.Time // cero si el token no trae iat
}

// Inspect decodifica los claims del token SIN verificar la firma.
func Inspect(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, fmt.Errorf("jwt: token malformado: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("jwt: claims inválidos")
	}
	out := &Claims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// Expired reporta si el token está vencido en el instante now.
// Tokens malformados se consideran vencidos; tokens sin exp nunca vencen localmente.
func Expired(tokenString string, now time.Time) bool {
	claims, err := Inspect(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return false
	}
	return now.After(claims.ExpiresAt)
}
