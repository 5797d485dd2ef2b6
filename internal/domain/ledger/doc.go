// Package ledger contiene las reglas puras del ledger de lotes: signos permitidos,
// orden de replay, recálculo de la cantidad esperada, detección de duplicados
// heredados y disponibilidad para entrega. No depende de infraestructura.
package ledger
