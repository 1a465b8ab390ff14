package cache

import (
	"context"

	"github.com/jhoicas/shop-client/internal/domain"
	"github.com/jhoicas/shop-client/pkg/logger"
)

// Loader obtiene el valor de una clave desde la API remota.
// Los reintentos no viven en esta capa: un Loader que falla es terminal para
// ese intento y la política de retry pertenece a la UI o a un wrapper superior.
type Loader func(ctx context.Context) (any, error)

// flight un fetch en vuelo para una clave. Las llamadas concurrentes a la
// misma clave se cuelgan de done en lugar de duplicar la petición.
type flight struct {
	seq  uint64
	done chan struct{}
	err  *domain.APIError // resultado del vuelo; nil si aplicó Write
}

// Coordinator coordina los fetches contra la caché: coalescing de peticiones
// concurrentes por clave, política fetch-if-absent y refetch forzado.
// Comparte el mutex de la caché para que "hay vuelo en curso" y el estado de
// la entrada se observen de forma atómica.
type Coordinator struct {
	cache   *Cache
	log     *logger.Logger
	flights map[Key]*flight // protegido por cache.mu
}

// NewCoordinator construye el coordinador sobre una caché.
func NewCoordinator(c *Cache, log *logger.Logger) *Coordinator {
	return &Coordinator{
		cache:   c,
		log:     log,
		flights: make(map[Key]*flight),
	}
}

// FetchIfAbsent resuelve la clave con política perezosa:
//   - entrada ready: retorna de inmediato sin invocar loader;
//   - vuelo en curso: se cuelga del vuelo existente (exactamente una llamada
//     de red por clave, sin importar cuántos se cuelguen);
//   - en otro caso: marca loading, invoca loader y asienta el resultado.
//
// Bloquea a la goroutine llamante hasta que el vuelo (propio o ajeno) asiente.
func (co *Coordinator) FetchIfAbsent(ctx context.Context, k Key, load Loader) error {
	co.cache.mu.Lock()
	st := co.cache.stateLocked(k)
	if st.status == StatusReady {
		co.cache.mu.Unlock()
		return nil
	}
	// Solo vale colgarse de un vuelo que todavía puede aplicar: uno emitido
	// antes de un desalojo está condenado a descartarse y no poblaría nada.
	if f, ok := co.flights[k]; ok && f.seq > co.cache.seqLocked(k).applied {
		co.cache.mu.Unlock()
		return co.attach(ctx, f)
	}
	f := co.launchLocked(k, st) // suelta el mutex
	return co.run(ctx, k, f, load)
}

// ForceRefetch siempre emite una llamada nueva, aunque exista un vuelo en
// curso para la clave. El resultado sobreescribe la entrada salvo que un fetch
// más nuevo de la misma clave ya haya completado (gana el último emitido, no
// el último en completar).
func (co *Coordinator) ForceRefetch(ctx context.Context, k Key, load Loader) error {
	co.cache.mu.Lock()
	st := co.cache.stateLocked(k)
	f := co.launchLocked(k, st) // suelta el mutex
	return co.run(ctx, k, f, load)
}

// attach espera el asiento de un vuelo ajeno y devuelve su resultado.
func (co *Coordinator) attach(ctx context.Context, f *flight) error {
	select {
	case <-f.done:
		if f.err != nil {
			return f.err
		}
		return nil
	case <-ctx.Done():
		// El vuelo compartido sigue su curso y poblará la caché igual;
		// solo este llamante deja de esperar.
		return domain.NewNetworkError(ctx.Err())
	}
}

// launchLocked emite un vuelo nuevo: asigna el número de secuencia, lo
// registra como vuelo vigente de la clave y marca la entrada en loading.
// Requiere cache.mu tomado; lo suelta al notificar.
func (co *Coordinator) launchLocked(k Key, st *entryState) *flight {
	sq := co.cache.seqLocked(k)
	sq.issued++
	f := &flight{seq: sq.issued, done: make(chan struct{})}
	co.flights[k] = f
	st.status = StatusLoading
	co.cache.notifyLocked(k) // suelta el mutex
	return f
}

// run ejecuta el loader en la goroutine llamante y asienta el resultado.
func (co *Coordinator) run(ctx context.Context, k Key, f *flight, load Loader) error {
	data, err := load(ctx)

	co.cache.mu.Lock()
	if co.flights[k] == f {
		delete(co.flights, k)
	}
	sq := co.cache.seqLocked(k)

	if f.seq <= sq.applied {
		// Un fetch más nuevo ya completó, o la clave se desalojó después de
		// emitirse este vuelo: esta respuesta se descarta.
		co.cache.mu.Unlock()
		co.log.Debug().Str("key", k.String()).Uint64("seq", f.seq).Msg("respuesta vieja descartada")
		if err != nil {
			f.err = domain.AsAPIError(err)
		}
		close(f.done)
		if f.err != nil {
			return f.err
		}
		return nil
	}

	sq.applied = f.seq
	st := co.cache.stateLocked(k)
	if err != nil {
		apiErr := domain.AsAPIError(err)
		f.err = apiErr
		if apiErr.Kind == domain.KindAuth {
			// AuthError siempre desaloja: no hay stale-while-error para una
			// sesión muerta. El teardown global corre aparte, vía el hook 401.
			delete(co.cache.entries, k)
		} else {
			st.status = StatusError
			st.err = apiErr // el último dato bueno se conserva (stale-while-error)
		}
		co.cache.notifyLocked(k)
		close(f.done)
		return apiErr
	}

	st.data = data
	st.status = StatusReady
	st.err = nil
	co.cache.notifyLocked(k)
	close(f.done)
	return nil
}
