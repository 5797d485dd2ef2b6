package entity

import "fmt"

// ReferenceKind identifica la variante de una referencia de ledger tal como se persiste.
type ReferenceKind string

const (
	RefDelivery            ReferenceKind = "delivery"
	RefDeliveryItem        ReferenceKind = "delivery_item"
	RefSystemCorrection    ReferenceKind = "system_correction"
	RefStockReconciliation ReferenceKind = "stock_reconciliation"
)

// Identificadores tipados por variante.
type (
	DeliveryID       string
	DeliveryItemID   string
	CorrectionID     string
	ReconciliationID string
)

// Reference es la variante etiquetada que indica el origen de un movimiento.
// Solo los tipos de este paquete la implementan.
type Reference interface {
	Kind() ReferenceKind
	RawID() string
	isReference()
}

// DeliveryRef referencia una entrega completa (registro grueso, legado).
type DeliveryRef struct{ ID DeliveryID }

// DeliveryItemRef referencia una línea de entrega (registro canónico).
type DeliveryItemRef struct{ ID DeliveryItemID }

// SystemCorrectionRef referencia una corrección hecha por scripts heredados.
type SystemCorrectionRef struct{ ID CorrectionID }

// StockReconciliationRef referencia una corrida del motor de conciliación.
type StockReconciliationRef struct{ ID ReconciliationID }

func (DeliveryRef) Kind() ReferenceKind            { return RefDelivery }
func (DeliveryItemRef) Kind() ReferenceKind        { return RefDeliveryItem }
func (SystemCorrectionRef) Kind() ReferenceKind    { return RefSystemCorrection }
func (StockReconciliationRef) Kind() ReferenceKind { return RefStockReconciliation }

func (r DeliveryRef) RawID() string            { return string(r.ID) }
func (r DeliveryItemRef) RawID() string        { return string(r.ID) }
func (r SystemCorrectionRef) RawID() string    { return string(r.ID) }
func (r StockReconciliationRef) RawID() string { return string(r.ID) }

func (DeliveryRef) isReference()            {}
func (DeliveryItemRef) isReference()        {}
func (SystemCorrectionRef) isReference()    {}
func (StockReconciliationRef) isReference() {}

// AsDeliveryItem devuelve el DeliveryItemID si la referencia es de esa variante.
func AsDeliveryItem(r Reference) (DeliveryItemID, bool) {
	v, ok := r.(DeliveryItemRef)
	return v.ID, ok
}

// AsStockReconciliation devuelve el ReconciliationID si la referencia es de esa variante.
func AsStockReconciliation(r Reference) (ReconciliationID, bool) {
	v, ok := r.(StockReconciliationRef)
	return v.ID, ok
}

// KindOf devuelve la variante o "" si no hay referencia.
func KindOf(r Reference) ReferenceKind {
	if r == nil {
		return ""
	}
	return r.Kind()
}

// ParseReference reconstruye la variante desde las columnas (reference_kind, reference_id).
// Ambas vacías equivalen a "sin referencia".
func ParseReference(kind, id string) (Reference, error) {
	if kind == "" && id == "" {
		return nil, nil
	}
	if id == "" {
		return nil, fmt.Errorf("referencia %q sin id", kind)
	}
	switch ReferenceKind(kind) {
	case RefDelivery:
		return DeliveryRef{ID: DeliveryID(id)}, nil
	case RefDeliveryItem:
		return DeliveryItemRef{ID: DeliveryItemID(id)}, nil
	case RefSystemCorrection:
		return SystemCorrectionRef{ID: CorrectionID(id)}, nil
	case RefStockReconciliation:
		return StockReconciliationRef{ID: ReconciliationID(id)}, nil
	}
	return nil, fmt.Errorf("tipo de referencia desconocido: %q", kind)
}
