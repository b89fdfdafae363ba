package memory

// Repositories todos los adaptadores sobre un mismo Store.
type Repositories struct {
	Store       *Store
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

// NewRepositories crea un Store vacío y sus repositorios.
func NewRepositories() *Repositories {
	s := NewStore()
	return &Repositories{
		Store:       s,
		Tx:          NewTxRunner(s),
		Movements:   NewMovementRepository(s),
		Projections: NewProjectionRepository(s),
		Batches:     NewBatchRepository(s),
		Alerts:      NewAlertRepository(s),
		Policies:    NewPolicyRepository(s),
		Items:       NewItemRepository(s),
		Locations:   NewLocationRepository(s),
		Categories:  NewCategoryRepository(s),
		Suppliers:   NewSupplierRepository(s),
	}
}
