package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueKind clasifica un hallazgo de la conciliación.
type IssueKind string

const (
	IssueDuplicateLedgerEntry    IssueKind = "duplicate_ledger_entry"
	IssueQuantityDrift           IssueKind = "quantity_drift"
	IssueAggregationMismatch     IssueKind = "aggregation_mismatch"
	IssueUnresolvableDiscrepancy IssueKind = "unresolvable_discrepancy"
	IssueBatchFailed             IssueKind = "batch_failed"
	IssueProductFailed           IssueKind = "product_failed"
)

// Issue es un hallazgo con el estado antes y después (después = antes si no se corrigió).
type Issue struct {
	Kind      IssueKind       `json:"kind"`
	BatchID   string          `json:"batch_id,omitempty"`
	ProductID string          `json:"product_id,omitempty"`
	Before    decimal.Decimal `json:"before"`
	After     decimal.Decimal `json:"after"`
	Fixed     bool            `json:"fixed"`
	Detail    string          `json:"detail"`
}

// Report resultado de una corrida. Siempre se devuelve completo aunque haya fallas parciales.
type Report struct {
	RunID              string    `json:"run_id"`
	DryRun             bool      `json:"dry_run"`
	Scope              Scope     `json:"scope"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	BatchesScanned     int       `json:"batches_scanned"`
	ProductsScanned    int       `json:"products_scanned"`
	DiscrepanciesFound int       `json:"discrepancies_found"`
	DuplicatesRemoved  int       `json:"duplicates_removed"`
	BatchesFixed       int       `json:"batches_fixed"`
	CacheCorrections   int       `json:"cache_corrections"`
	Issues             []Issue   `json:"issues"`
	Unresolved         []Issue   `json:"unresolved"`
}

// Fixes cuenta las escrituras hechas por la corrida.
func (r *Report) Fixes() int {
	return r.DuplicatesRemoved + r.BatchesFixed + r.CacheCorrections
}

// HasUnresolved indica si quedó algo para revisión manual.
func (r *Report) HasUnresolved() bool {
	return len(r.Unresolved) > 0
}

func (r *Report) add(is Issue) {
	switch is.Kind {
	case IssueBatchFailed, IssueProductFailed:
		r.Unresolved = append(r.Unresolved, is)
	case IssueUnresolvableDiscrepancy:
		r.DiscrepanciesFound++
		r.Unresolved = append(r.Unresolved, is)
	default:
		r.DiscrepanciesFound++
		r.Issues = append(r.Issues, is)
	}
}
