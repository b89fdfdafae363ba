package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Store almacenamiento en memoria con las mismas garantías que el adaptador PostgreSQL:
// historial solo-anexar, escritura condicional por versión y una alerta activa por clave.
// Las transacciones acumulan escrituras y las confirman de forma atómica (ver TxRunner).
type Store struct {
	mu sync.RWMutex

	movements   map[entity.StockKey][]*entity.MovementEntry // orden de anexado
	byID        map[string]*entity.MovementEntry
	projections map[entity.StockKey]*entity.StockProjection
	batches     map[entity.StockKey][]*entity.Batch
	alerts      map[string]*entity.Alert
	policies    map[entity.StockKey]*entity.ItemPolicy // LocationID vacío = política general
	items       map[string]*entity.Item
	locations   map[string]*entity.Location
	categories  map[string]*entity.Category
	suppliers   map[string]*entity.Supplier
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		movements:   make(map[entity.StockKey][]*entity.MovementEntry),
		byID:        make(map[string]*entity.MovementEntry),
		projections: make(map[entity.StockKey]*entity.StockProjection),
		batches:     make(map[entity.StockKey][]*entity.Batch),
		alerts:      make(map[string]*entity.Alert),
		policies:    make(map[entity.StockKey]*entity.ItemPolicy),
		items:       make(map[string]*entity.Item),
		locations:   make(map[string]*entity.Location),
		categories:  make(map[string]*entity.Category),
		suppliers:   make(map[string]*entity.Supplier),
	}
}

// sortedKeys claves de un mapa en orden estable (listados deterministas).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func cloneEntry(e *entity.MovementEntry) *entity.MovementEntry {
	c := *e
	return &c
}

func cloneProjection(p *entity.StockProjection) *entity.StockProjection {
	c := *p
	return &c
}

func cloneAlert(a *entity.Alert) *entity.Alert {
	c := *a
	return &c
}
