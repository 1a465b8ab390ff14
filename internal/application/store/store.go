// Package store compone la capa de sincronización de estado del servidor:
// sesión + caché de entidades + coordinador de peticiones + cliente API.
// La UI consume solo Read/Subscribe, FetchIfAbsent/ForceRefetch y las
// mutaciones; las decisiones de navegación y presentación quedan fuera.
package store

import (
	"sync"
	"time"

	"github.com/jhoicas/shop-client/internal/cache"
	"github.com/jhoicas/shop-client/internal/infrastructure/api"
	"github.com/jhoicas/shop-client/internal/session"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// Config parámetros de construcción del store.
type Config struct {
	BaseURL string        // URL base de la API, ej. http://localhost:8080/api
	Timeout time.Duration // timeout de transporte del cliente HTTP
}

// Store objeto con ciclo de vida explícito (se construye al arrancar, se
// resetea en logout/teardown) e inyectado en los consumidores: nada de
// singletons ambientales, cada test puede levantar instancias aisladas.
type Store struct {
	log     *logger.Logger
	session *session.Store
	cache   *cache.Cache
	coord   *cache.Coordinator
	api     *api.Client

	mu       sync.Mutex
	tornDown bool // one-shot del teardown; se re-arma con el próximo login exitoso
	endSubs  map[int]func()
	nextSub  int
}

// New construye el store completo sobre una sesión ya restaurada.
func New(cfg Config, sess *session.Store, log *logger.Logger) *Store {
	s := &Store{
		log:     log,
		session: sess,
		endSubs: make(map[int]func()),
	}
	s.cache = cache.New(log)
	s.coord = cache.NewCoordinator(s.cache, log)
	s.api = api.NewClient(cfg.BaseURL, cfg.Timeout, sess, s.handleAuthFailure, log)
	return s
}

// Session devuelve el snapshot de la sesión actual.
func (s *Store) Session() session.Session {
	return s.session.Current()
}

// Read devuelve el snapshot síncrono de una clave de caché.
func (s *Store) Read(k cache.Key) cache.Entry {
	return s.cache.Read(k)
}

// Subscribe registra un listener de transiciones de una clave.
func (s *Store) Subscribe(k cache.Key, fn func(cache.Entry)) (cancel func()) {
	return s.cache.Subscribe(k, fn)
}

// SubscribeSessionEnd registra un listener del evento "sesión terminada",
// emitido exactamente una vez por teardown (la UI lo usa para redirigir a login).
func (s *Store) SubscribeSessionEnd(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.endSubs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.endSubs, id)
		s.mu.Unlock()
	}
}

// handleAuthFailure teardown global disparado por cualquier respuesta clase
// 401, venga de la petición que venga: desaloja toda la caché, limpia la
// sesión y emite "sesión terminada" una sola vez. Sección crítica: varios 401
// concurrentes ejecutan exactamente un teardown; los demás son no-ops hasta
// que un login exitoso re-arma el flag.
func (s *Store) handleAuthFailure() {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return
	}
	s.tornDown = true
	fns := make([]func(), 0, len(s.endSubs))
	for _, fn := range s.endSubs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.log.Warn().Msg("fallo de autenticación: teardown de sesión")
	s.cache.EvictAll()
	s.session.Clear()
	for _, fn := range fns {
		fn()
	}
}

// rearmTeardown re-arma el one-shot del teardown tras un login exitoso.
func (s *Store) rearmTeardown() {
	s.mu.Lock()
	s.tornDown = false
	s.mu.Unlock()
}
