package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shop-client/internal/domain/entity"
	"github.com/jhoicas/shop-client/internal/session"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func testUser() *entity.User {
	return &entity.User{
		ID:        1,
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Gómez",
		Phone:     "3001234567",
	}
}

// signedToken genera un JWT HS256 con la expiración dada. El secreto es
// irrelevante: el cliente no verifica firmas, solo inspecciona claims.
func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := gojwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: gojwt.NewNumericDate(expiresAt),
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("cualquier-secreto"))
	require.NoError(t, err)
	return tok
}

func sessionFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia
// ──────────────────────────────────────────────────────────────────────────────

// Set persiste token + identidad; un store nuevo sobre el mismo archivo restaura ambos.
func TestSessionStore_SetPersisteYRestaura(t *testing.T) {
	file := sessionFile(t)
	tok := signedToken(t, time.Now().Add(time.Hour))

	s := session.NewStore(file, logger.Nop())
	s.Set(tok, testUser())

	restored := session.NewStore(file, logger.Nop())
	sess := restored.Current()
	assert.True(t, sess.Authenticated())
	assert.Equal(t, tok, sess.Token)
	require.NotNil(t, sess.Identity)
	assert.Equal(t, "ana@example.com", sess.Identity.Email)
	assert.Equal(t, "Ana Gómez", sess.Identity.FullName())
}

// Clear borra memoria y disco: el archivo ya no existe y la sesión queda vacía.
func TestSessionStore_Clear(t *testing.T) {
	file := sessionFile(t)
	s := session.NewStore(file, logger.Nop())
	s.Set(signedToken(t, time.Now().Add(time.Hour)), testUser())

	s.Clear()

	assert.False(t, s.Current().Authenticated())
	assert.Nil(t, s.Current().Identity)
	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err), "el archivo de sesión debe borrarse")
}

// Un token vencido persistido se descarta al restaurar: arranque sin sesión.
func TestSessionStore_TokenVencidoSeDescarta(t *testing.T) {
	file := sessionFile(t)
	s := session.NewStore(file, logger.Nop())
	s.Set(signedToken(t, time.Now().Add(-time.Minute)), testUser())

	restored := session.NewStore(file, logger.Nop())
	assert.False(t, restored.Current().Authenticated())
	assert.Nil(t, restored.Current().Identity)
}

// Un archivo de sesión corrupto se ignora en lugar de romper el arranque.
func TestSessionStore_ArchivoCorruptoSeIgnora(t *testing.T) {
	file := sessionFile(t)
	require.NoError(t, os.WriteFile(file, []byte("{esto no es json"), 0o600))

	s := session.NewStore(file, logger.Nop())
	assert.False(t, s.Current().Authenticated())
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscripciones
// ──────────────────────────────────────────────────────────────────────────────

// Todo cambio de estado notifica a los suscriptores (guards de navegación).
func TestSessionStore_Subscribe_NotificaCambios(t *testing.T) {
	s := session.NewStore(sessionFile(t), logger.Nop())

	var got []bool
	cancel := s.Subscribe(func(sess session.Session) {
		got = append(got, sess.Authenticated())
	})
	defer cancel()

	s.Set(signedToken(t, time.Now().Add(time.Hour)), testUser())
	s.Clear()

	require.Len(t, got, 2)
	assert.True(t, got[0], "el login debe notificar sesión autenticada")
	assert.False(t, got[1], "el clear debe notificar sesión vacía")
}

func TestSessionStore_Subscribe_Cancel(t *testing.T) {
	s := session.NewStore(sessionFile(t), logger.Nop())

	count := 0
	cancel := s.Subscribe(func(session.Session) { count++ })
	cancel()

	s.Set(signedToken(t, time.Now().Add(time.Hour)), nil)
	assert.Zero(t, count)
}
