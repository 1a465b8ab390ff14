package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jhoicas/shop-client/internal/domain/entity"
	pkgjwt "github.com/jhoicas/shop-client/pkg/jwt"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// Session estado de autenticación del proceso.
// Invariante: Identity != nil implica Token != "".
type Session struct {
	Token    string
	Identity *entity.User
}

// Authenticated reporta si hay un token de sesión activo.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// persistedSession forma en disco del archivo de sesión.
type persistedSession struct {
	Token string         `json:"token"`
	User  *persistedUser `json:"user,omitempty"`
}

type persistedUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `json:"role,omitempty"`
}

// Store única fuente de verdad sobre "hay un usuario autenticado".
// Persiste token + identidad en un archivo JSON y notifica a los suscriptores
// en cada cambio de estado. No origina llamadas de red.
type Store struct {
	log  *logger.Logger
	file string

	mu      sync.Mutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

// NewStore construye el store y restaura la sesión persistida si existe.
// Tokens vencidos (inspección local de claims, sin verificar firma) se descartan.
func NewStore(file string, log *logger.Logger) *Store {
	s := &Store{
		log:  log,
		file: file,
		subs: make(map[int]func(Session)),
	}
	s.restore()
	return s
}

// Current devuelve un snapshot de la sesión actual. Nunca bloquea en red.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token implementa la fuente de credenciales para el cliente HTTP.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Token
}

// Set reemplaza la sesión, la persiste a disco y notifica.
// Se invoca tras un login exitoso; identity puede ser nil si solo hay token.
func (s *Store) Set(token string, identity *entity.User) {
	s.mu.Lock()
	s.current = Session{Token: token, Identity: identity}
	s.persistLocked()
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Clear borra la sesión en memoria y en disco, y notifica.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = Session{}
	if err := os.Remove(s.file); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", s.file).Msg("no se pudo borrar el archivo de sesión")
	}
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe registra un listener para cambios de sesión (lo usan los guards de
// navegación para redirigir). Devuelve una función para cancelar la suscripción.
func (s *Store) Subscribe(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// subscribersLocked devuelve los listeners y el snapshot a notificar.
// Las notificaciones se despachan fuera del lock.
func (s *Store) subscribersLocked() ([]func(Session), Session) {
	out := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out, s.current
}

// restore carga la sesión desde disco al construir el store.
func (s *Store) restore() {
	raw, err := os.ReadFile(s.file)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("file", s.file).Msg("no se pudo leer el archivo de sesión")
		}
		return
	}
	var p persistedSession
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn().Err(err).Msg("archivo de sesión corrupto; se ignora")
		return
	}
	if p.Token == "" {
		return
	}
	if pkgjwt.Expired(p.Token, time.Now()) {
		s.log.Info().Msg("token de sesión vencido; se descarta")
		_ = os.Remove(s.file)
		return
	}
	sess := Session{Token: p.Token}
	if p.User != nil {
		sess.Identity = &entity.User{
			ID:        p.User.ID,
			Email:     p.User.Email,
			FirstName: p.User.FirstName,
			LastName:  p.User.LastName,
			Phone:     p.User.Phone,
			Role:      p.User.Role,
		}
	}
	s.current = sess
}

// persistLocked escribe la sesión actual a disco. Requiere s.mu tomado.
func (s *Store) persistLocked() {
	if s.current.Token == "" {
		if err := os.Remove(s.file); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("no se pudo borrar el archivo de sesión")
		}
		return
	}
	p := persistedSession{Token: s.current.Token}
	if u := s.current.Identity; u != nil {
		p.User = &persistedUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			Role:      u.Role,
		}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Error().Err(err).Msg("serializar sesión")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o700); err != nil {
		s.log.Warn().Err(err).Msg("crear directorio de sesión")
		return
	}
	if err := os.WriteFile(s.file, raw, 0o600); err != nil {
		s.log.Warn().Err(err).Str("file", s.file).Msg("persistir sesión")
	}
}
