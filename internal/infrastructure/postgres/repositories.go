package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories adaptadores sobre el pool, para lecturas y escrituras fuera de transacción.
type Repositories struct {
	Tx          *TxRunner
	Movements   *MovementRepo
	Projections *ProjectionRepo
	Batches     *BatchRepo
	Alerts      *AlertRepo
	Policies    *PolicyRepo
	Items       *ItemRepo
	Locations   *LocationRepo
	Categories  *CategoryRepo
	Suppliers   *SupplierRepo
}

// NewRepositories construye todos los adaptadores sobre el mismo pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Tx:          NewTxRunner(pool),
		Movements:   NewMovementRepository(pool),
		Projections: NewProjectionRepository(pool),
		Batches:     NewBatchRepository(pool),
		Alerts:      NewAlertRepository(pool),
		Policies:    NewPolicyRepository(pool),
		Items:       NewItemRepository(pool),
		Locations:   NewLocationRepository(pool),
		Categories:  NewCategoryRepository(pool),
		Suppliers:   NewSupplierRepository(pool),
	}
}
