package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Intent intención de movimiento enviada por un llamador. Cada variante recibe una magnitud
// positiva (salvo Adjustment, que recibe un delta con signo) y produce el delta con el signo
// que corresponde a su tipo, de modo que no se puede construir una salida con delta positivo.
// La interfaz está sellada: solo las variantes de este paquete la implementan.
type Intent interface {
	Kind() MovementKind
	Delta() decimal.Decimal
	validate() error
	fill(e *MovementEntry)
}

// Receipt entrada de mercancía (recepción de proveedor u orden de compra).
type Receipt struct {
	Quantity    decimal.Decimal
	ReferenceID string
	UnitCost    *decimal.Decimal // opcional; alimenta el costo promedio y la alerta price_change
	LotNumber   string
	ExpiresAt   *time.Time // opcional; crea un lote con vencimiento
}

func (r Receipt) Kind() MovementKind     { return KindReceive }
func (r Receipt) Delta() decimal.Decimal { return r.Quantity }
func (r Receipt) validate() error {
	if err := positive(r.Quantity); err != nil {
		return err
	}
	if r.UnitCost != nil && r.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}
func (r Receipt) fill(e *MovementEntry) {
	e.ReferenceID = r.ReferenceID
	e.UnitCost = r.UnitCost
	e.LotNumber = r.LotNumber
	e.ExpiresAt = r.ExpiresAt
}

// Sale salida por venta.
type Sale struct {
	Quantity    decimal.Decimal
	ReferenceID string
}

func (s Sale) Kind() MovementKind     { return KindSale }
func (s Sale) Delta() decimal.Decimal { return s.Quantity.Neg() }
func (s Sale) validate() error        { return positive(s.Quantity) }
func (s Sale) fill(e *MovementEntry)  { e.ReferenceID = s.ReferenceID }

// Usage consumo interno (cocina, producción, muestras).
type Usage struct {
	Quantity decimal.Decimal
	Note     string
}

func (u Usage) Kind() MovementKind     { return KindUsage }
func (u Usage) Delta() decimal.Decimal { return u.Quantity.Neg() }
func (u Usage) validate() error        { return positive(u.Quantity) }
func (u Usage) fill(e *MovementEntry)  { e.Reason = u.Note }

// Adjustment corrección manual; admite ambos signos y exige motivo.
type Adjustment struct {
	Change      decimal.Decimal // con signo
	Reason      string
	ReferenceID string
}

func (a Adjustment) Kind() MovementKind     { return KindAdjustment }
func (a Adjustment) Delta() decimal.Decimal { return a.Change }
func (a Adjustment) validate() error {
	if a.Change.IsZero() {
		return domain.ErrZeroQuantity
	}
	if strings.TrimSpace(a.Reason) == "" {
		return domain.ErrMissingReason
	}
	return nil
}
func (a Adjustment) fill(e *MovementEntry) {
	e.Reason = a.Reason
	e.ReferenceID = a.ReferenceID
}

// Return devolución de cliente que reingresa al stock.
type Return struct {
	Quantity    decimal.Decimal
	ReferenceID string
}

func (r Return) Kind() MovementKind     { return KindReturn }
func (r Return) Delta() decimal.Decimal { return r.Quantity }
func (r Return) validate() error        { return positive(r.Quantity) }
func (r Return) fill(e *MovementEntry)  { e.ReferenceID = r.ReferenceID }

// TransferOut pata de salida de un traslado. Solo la construye el coordinador de traslados.
type TransferOut struct {
	Quantity decimal.Decimal
	GroupID  string
}

func (t TransferOut) Kind() MovementKind     { return KindTransferOut }
func (t TransferOut) Delta() decimal.Decimal { return t.Quantity.Neg() }
func (t TransferOut) validate() error        { return transferLeg(t.Quantity, t.GroupID) }
func (t TransferOut) fill(e *MovementEntry) {
	e.TransferGroupID = t.GroupID
	e.ReferenceID = t.GroupID
}

// TransferIn pata de entrada de un traslado.
type TransferIn struct {
	Quantity decimal.Decimal
	GroupID  string
}

func (t TransferIn) Kind() MovementKind     { return KindTransferIn }
func (t TransferIn) Delta() decimal.Decimal { return t.Quantity }
func (t TransferIn) validate() error        { return transferLeg(t.Quantity, t.GroupID) }
func (t TransferIn) fill(e *MovementEntry) {
	e.TransferGroupID = t.GroupID
	e.ReferenceID = t.GroupID
}

// Validate valida la intención sin construir el movimiento.
func Validate(in Intent) error {
	if in == nil {
		return domain.ErrUnknownKind
	}
	return in.validate()
}

// NewEntry materializa la intención en un MovementEntry listo para anexar.
func NewEntry(in Intent, id, itemID, locationID, actor string, at time.Time) (*MovementEntry, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(actor) == "" {
		actor = ActorSystem
	}
	e := &MovementEntry{
		ID:            id,
		ItemID:        itemID,
		LocationID:    locationID,
		QuantityDelta: in.Delta(),
		Kind:          in.Kind(),
		Actor:         actor,
		Timestamp:     at,
	}
	in.fill(e)
	return e, nil
}

func positive(q decimal.Decimal) error {
	if q.IsZero() {
		return domain.ErrZeroQuantity
	}
	if q.IsNegative() {
		return domain.ErrInvalidQuantitySign
	}
	return nil
}

func transferLeg(q decimal.Decimal, groupID string) error {
	if groupID == "" {
		return domain.ErrInvalidInput
	}
	return positive(q)
}
