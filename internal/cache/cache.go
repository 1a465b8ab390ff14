package cache

import (
	"sync"

	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// Status estado de una entrada de caché.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Entry snapshot inmutable de una entrada de caché. La UI solo recibe copias;
// la entrada viva pertenece exclusivamente a la caché.
type Entry struct {
	Key    Key
	Data   any
	Status Status
	Err    *domain.APIError
}

// entryState estado vivo de una clave, protegido por el mutex de la caché.
type entryState struct {
	data   any
	status Status
	err    *domain.APIError
}

// seqState contadores "gana el último emitido" de una clave: cada fetch recibe
// un número de secuencia al emitirse y su respuesta solo se aplica si ningún
// fetch más nuevo de la misma clave completó antes. Viven aparte de entryState
// a propósito: desalojar la entrada NO reinicia la secuencia, porque una
// respuesta emitida antes del desalojo no puede revivir datos viejos encima de
// un fetch emitido después.
type seqState struct {
	issued  uint64
	applied uint64
}

// Cache almacenamiento en memoria de entidades del servidor, por clave
// estructurada, con suscripción por clave. Estado mutable de todo el proceso
// con un único dueño: se muta solo vía Write/MarkError/Evict y se lee solo
// por snapshot, sin lecturas rotas.
type Cache struct {
	log *logger.Logger

	mu        sync.Mutex
	entries   map[Key]*entryState
	seqs      map[Key]*seqState
	listeners map[Key]map[int]func(Entry)
	nextSub   int
}

// New construye una caché vacía.
func New(log *logger.Logger) *Cache {
	return &Cache{
		log:       log,
		entries:   make(map[Key]*entryState),
		seqs:      make(map[Key]*seqState),
		listeners: make(map[Key]map[int]func(Entry)),
	}
}

// Read devuelve el snapshot actual de la clave de forma síncrona; nunca bloquea.
// Claves no vistas devuelven una entrada idle sin datos.
func (c *Cache) Read(k Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(k)
}

// Subscribe registra un listener que se invoca en cada transición de la
// entrada. Devuelve la función de cancelación; cancelar no aborta fetches en
// vuelo: poblar la caché sigue siendo valioso aunque ya nadie mire.
func (c *Cache) Subscribe(k Key, fn func(Entry)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.listeners[k] == nil {
		c.listeners[k] = make(map[int]func(Entry))
	}
	c.listeners[k][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		if subs := c.listeners[k]; subs != nil {
			delete(subs, id)
			if len(subs) == 0 {
				delete(c.listeners, k)
			}
		}
		c.mu.Unlock()
	}
}

// Write reemplaza los datos de la clave: status=ready, error limpio, notifica.
func (c *Cache) Write(k Key, data any) {
	c.mu.Lock()
	st := c.stateLocked(k)
	st.data = data
	st.status = StatusReady
	st.err = nil
	c.notifyLocked(k)
}

// MarkError marca la entrada en error conservando el último dato bueno si
// existe (stale-while-error), y notifica.
func (c *Cache) MarkError(k Key, apiErr *domain.APIError) {
	c.mu.Lock()
	st := c.stateLocked(k)
	st.status = StatusError
	st.err = apiErr
	c.notifyLocked(k)
}

// Evict elimina la entrada de la clave y notifica una entrada idle vacía.
// También invalida los vuelos emitidos hasta ahora: sus respuestas llegan con
// secuencia vieja y no se aplican.
func (c *Cache) Evict(k Key) {
	c.mu.Lock()
	c.invalidateSeqLocked(k)
	if _, ok := c.entries[k]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.entries, k)
	c.log.Debug().Str("key", k.String()).Msg("entrada desalojada")
	c.notifyLocked(k)
}

// EvictAll elimina todas las entradas (logout o teardown de sesión) y
// notifica a todos los suscriptores con entradas idle vacías.
func (c *Cache) EvictAll() {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.entries = make(map[Key]*entryState)
	for _, s := range c.seqs {
		s.applied = s.issued
	}
	c.log.Debug().Int("entries", len(keys)).Msg("caché desalojada por completo")

	type pending struct {
		fn    func(Entry)
		entry Entry
	}
	var notify []pending
	for _, k := range keys {
		snap := c.snapshotLocked(k)
		for _, fn := range c.listeners[k] {
			notify = append(notify, pending{fn, snap})
		}
	}
	c.mu.Unlock()

	for _, p := range notify {
		p.fn(p.entry)
	}
}

// stateLocked devuelve (creando si hace falta) el estado vivo de la clave.
func (c *Cache) stateLocked(k Key) *entryState {
	st, ok := c.entries[k]
	if !ok {
		st = &entryState{status: StatusIdle}
		c.entries[k] = st
	}
	return st
}

// seqLocked devuelve (creando si hace falta) los contadores de secuencia de la
// clave. Nunca se borran: la secuencia sobrevive a los desalojos.
func (c *Cache) seqLocked(k Key) *seqState {
	s, ok := c.seqs[k]
	if !ok {
		s = &seqState{}
		c.seqs[k] = s
	}
	return s
}

// invalidateSeqLocked descarta todo vuelo emitido hasta ahora para la clave.
func (c *Cache) invalidateSeqLocked(k Key) {
	if s, ok := c.seqs[k]; ok {
		s.applied = s.issued
	}
}

func (c *Cache) snapshotLocked(k Key) Entry {
	st, ok := c.entries[k]
	if !ok {
		return Entry{Key: k, Status: StatusIdle}
	}
	return Entry{Key: k, Data: st.data, Status: st.status, Err: st.err}
}

// notifyLocked toma el snapshot y los listeners bajo el lock, lo suelta y
// despacha. Los listeners nunca corren con el mutex tomado.
func (c *Cache) notifyLocked(k Key) {
	snap := c.snapshotLocked(k)
	subs := make([]func(Entry), 0, len(c.listeners[k]))
	for _, fn := range c.listeners[k] {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
