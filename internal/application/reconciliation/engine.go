// Package reconciliation implementa el motor de conciliación del ledger de lotes:
// elimina dobles escrituras heredadas, corrige deriva con un ajuste auditable y
// verifica las cachés de producto. Cada lote se corrige en una unidad atómica propia.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
	"github.com/jhoicas/batch-ledger/internal/domain"
	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/ledger"
	"github.com/jhoicas/batch-ledger/pkg/logger"
)

// Config parámetros del motor.
type Config struct {
	Window      time.Duration   // ventana de duplicados (60s por defecto)
	Tolerance   decimal.Decimal // diferencia aceptada (0.01 por defecto)
	Workers     int             // lotes en paralelo
	SystemActor string          // created_by de los ajustes de conciliación
}

// Engine motor de conciliación. Solo depende de los puertos inyectados.
type Engine struct {
	writer   *inventory.BatchWriter
	txRunner inventory.TxRunner
	repos    inventory.Repos
	cfg      Config
	log      *logger.Logger
}

// NewEngine construye el motor. repos se usa fuera de transacción para resolver el alcance.
func NewEngine(writer *inventory.BatchWriter, txRunner inventory.TxRunner, repos inventory.Repos, cfg Config, log *logger.Logger) (*Engine, error) {
	if cfg.SystemActor == "" {
		return nil, fmt.Errorf("actor de sistema requerido: %w", domain.ErrInvalidInput)
	}
	if cfg.Window <= 0 {
		cfg.Window = ledger.DefaultWindow
	}
	if !cfg.Tolerance.IsPositive() {
		cfg.Tolerance = ledger.Tolerance
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{writer: writer, txRunner: txRunner, repos: repos, cfg: cfg, log: log}, nil
}

// batchOutcome resultado de un lote, recogido por índice para que el reporte sea determinista.
type batchOutcome struct {
	issues  []Issue
	removed int
	fixed   bool
}

// Run concilia el alcance indicado. Solo devuelve error si el alcance no se puede resolver;
// las fallas por lote o producto quedan en el reporte.
func (e *Engine) Run(ctx context.Context, scope Scope, dryRun bool) (*Report, error) {
	batchIDs, productIDs, err := e.resolve(ctx, scope)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:      uuid.Must(uuid.NewV7()).String(),
		DryRun:     dryRun,
		Scope:      scope,
		StartedAt:  e.writer.Now(),
		Issues:     []Issue{},
		Unresolved: []Issue{},
	}
	log := e.log.WithFields(map[string]string{"run_id": rep.RunID})
	log.Info().Str("scope", string(scope.Kind)).Str("id", scope.ID).Bool("dry_run", dryRun).
		Int("batches", len(batchIDs)).Msg("conciliación iniciada")

	outcomes := make([]batchOutcome, len(batchIDs))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, id := range batchIDs {
		i, id := i, id
		g.Go(func() error {
			out, err := e.reconcileBatch(ctx, log, rep.RunID, id, dryRun)
			if err != nil {
				log.Error().Err(err).Str("batch_id", id).Msg("falló la conciliación del lote")
				out = batchOutcome{issues: []Issue{{
					Kind:    IssueBatchFailed,
					BatchID: id,
					Detail:  err.Error(),
				}}}
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		rep.BatchesScanned++
		rep.DuplicatesRemoved += out.removed
		if out.fixed {
			rep.BatchesFixed++
		}
		for _, is := range out.issues {
			rep.add(is)
		}
	}

	for _, pid := range productIDs {
		rep.ProductsScanned++
		issues, corrected, err := e.reconcileProduct(ctx, log, pid, dryRun)
		if err != nil {
			log.Error().Err(err).Str("product_id", pid).Msg("falló la verificación del producto")
			rep.add(Issue{Kind: IssueProductFailed, ProductID: pid, Detail: err.Error()})
			continue
		}
		if corrected {
			rep.CacheCorrections++
		}
		for _, is := range issues {
			rep.add(is)
		}
	}

	rep.FinishedAt = e.writer.Now()
	log.Info().
		Int("discrepancies", rep.DiscrepanciesFound).
		Int("duplicates_removed", rep.DuplicatesRemoved).
		Int("batches_fixed", rep.BatchesFixed).
		Int("cache_corrections", rep.CacheCorrections).
		Int("unresolved", len(rep.Unresolved)).
		Msg("conciliación terminada")
	return rep, nil
}

func (e *Engine) resolve(ctx context.Context, scope Scope) (batchIDs, productIDs []string, err error) {
	switch scope.Kind {
	case ScopeAll:
		if batchIDs, err = e.repos.Batches.ListIDs(ctx); err != nil {
			return nil, nil, err
		}
		if productIDs, err = e.repos.Products.ListIDs(ctx); err != nil {
			return nil, nil, err
		}
		return batchIDs, productIDs, nil
	case ScopeProduct:
		if _, err := e.repos.Products.GetByID(ctx, scope.ID); err != nil {
			return nil, nil, err
		}
		batches, err := e.repos.Batches.ListByProduct(ctx, scope.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, b := range batches {
			batchIDs = append(batchIDs, b.ID)
		}
		return batchIDs, []string{scope.ID}, nil
	case ScopeBatch:
		b, err := e.repos.Batches.GetByID(ctx, scope.ID)
		if err != nil {
			return nil, nil, err
		}
		return []string{b.ID}, []string{b.ProductID}, nil
	}
	return nil, nil, fmt.Errorf("alcance %q: %w", scope.Kind, domain.ErrInvalidInput)
}

// reconcileBatch analiza y, si no es simulación, corrige un lote bajo su bloqueo y en una sola tx.
func (e *Engine) reconcileBatch(ctx context.Context, log *logger.Logger, runID, batchID string, dryRun bool) (batchOutcome, error) {
	var out batchOutcome
	err := e.writer.Do(ctx, batchID, func(r inventory.Repos, b *entity.Batch) error {
		out = batchOutcome{}
		history, err := r.Ledger.Replay(ctx, b.ID)
		if err != nil {
			return err
		}
		plan := ledger.Analyze(b, history, e.cfg.Window, e.cfg.Tolerance)

		for _, g := range plan.Duplicates {
			is := Issue{
				Kind:      IssueDuplicateLedgerEntry,
				BatchID:   b.ID,
				ProductID: b.ProductID,
				Before:    plan.Current,
				After:     plan.Current,
				Detail:    g.Detail(),
			}
			if g.Ambiguous {
				is.Kind = IssueUnresolvableDiscrepancy
			} else {
				is.Fixed = !dryRun
			}
			out.issues = append(out.issues, is)
		}
		if plan.Negative {
			out.issues = append(out.issues, Issue{
				Kind:      IssueUnresolvableDiscrepancy,
				BatchID:   b.ID,
				ProductID: b.ProductID,
				Before:    plan.Current,
				After:     plan.Replay.Expected,
				Detail:    fmt.Sprintf("el historial suma %s; se recorta a 0", plan.Replay.Raw.String()),
			})
		}
		if plan.Drift {
			out.issues = append(out.issues, Issue{
				Kind:      IssueQuantityDrift,
				BatchID:   b.ID,
				ProductID: b.ProductID,
				Before:    plan.Current,
				After:     plan.Replay.Expected,
				Fixed:     !dryRun,
				Detail:    fmt.Sprintf("cantidad %s, replay %s", plan.Current.String(), plan.Replay.Expected.String()),
			})
		}
		if dryRun || !plan.NeedsFix() {
			return nil
		}

		if len(plan.Remove) > 0 {
			ids := make([]string, 0, len(plan.Remove))
			for _, tx := range plan.Remove {
				ids = append(ids, tx.ID)
				log.Warn().Str("batch_id", b.ID).Str("ledger_id", tx.ID).
					Str("reference", string(entity.KindOf(tx.Reference))+":"+tx.Reference.RawID()).
					Str("quantity", tx.Quantity.String()).
					Time("created_at", tx.CreatedAt).
					Msg("borrando asignación duplicada")
			}
			n, err := r.Ledger.DeleteByIDs(ctx, b.ID, ids)
			if err != nil {
				return err
			}
			if int(n) != len(ids) {
				return fmt.Errorf("lote %s: se esperaban %d filas borradas, fueron %d: %w", b.ID, len(ids), n, domain.ErrConflict)
			}
			out.removed = len(ids)
		}

		if plan.Drift {
			before := b.CurrentQuantity
			if _, err := e.writer.Append(ctx, r, b, inventory.AppendInput{
				Type:      entity.TxAdjustment,
				Quantity:  plan.Delta,
				Reference: entity.StockReconciliationRef{ID: entity.ReconciliationID(runID)},
				CreatedBy: e.cfg.SystemActor,
				Notes:     "conciliación " + runID,
			}); err != nil {
				return err
			}
			log.Info().Str("batch_id", b.ID).Str("product_id", b.ProductID).
				Str("before", before.String()).Str("after", b.CurrentQuantity.String()).
				Str("delta", plan.Delta.String()).
				Msg("cantidad del lote corregida")
		}
		out.fixed = true
		return nil
	})
	return out, err
}

// reconcileProduct recalcula total_stock desde los lotes activos y verifica owner_stock.
// total_stock se corrige (solo caché); owner_stock solo se reporta.
func (e *Engine) reconcileProduct(ctx context.Context, log *logger.Logger, productID string, dryRun bool) ([]Issue, bool, error) {
	var (
		issues    []Issue
		corrected bool
	)
	err := e.txRunner.Run(ctx, func(r inventory.Repos) error {
		issues, corrected = nil, false
		p, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		batches, err := r.Batches.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		total, available := decimal.Zero, decimal.Zero
		for _, b := range batches {
			if !b.IsActive {
				continue
			}
			pending, err := r.Assignments.PendingQuantity(ctx, b.ID)
			if err != nil {
				return err
			}
			total = total.Add(b.CurrentQuantity)
			available = available.Add(ledger.AvailableForDelivery(b.CurrentQuantity, pending))
		}

		if !p.TotalStock.Equal(total) {
			issues = append(issues, Issue{
				Kind:      IssueAggregationMismatch,
				ProductID: p.ID,
				Before:    p.TotalStock,
				After:     total,
				Fixed:     !dryRun,
				Detail:    "total_stock no coincide con la suma de lotes activos",
			})
			if !dryRun {
				if err := r.Products.SetTotalStock(ctx, p.ID, total); err != nil {
					return err
				}
				corrected = true
				log.Info().Str("product_id", p.ID).
					Str("before", p.TotalStock.String()).Str("after", total.String()).
					Msg("caché total_stock corregida")
			}
		}
		if !p.OwnerStock.Equal(available) {
			issues = append(issues, Issue{
				Kind:      IssueUnresolvableDiscrepancy,
				ProductID: p.ID,
				Before:    p.OwnerStock,
				After:     p.OwnerStock,
				Detail:    fmt.Sprintf("owner_stock %s, disponible para entrega %s", p.OwnerStock.String(), available.String()),
			})
			log.Warn().Str("product_id", p.ID).
				Str("owner_stock", p.OwnerStock.String()).Str("available", available.String()).
				Msg("owner_stock no coincide; requiere revisión manual")
		}
		return nil
	})
	return issues, corrected, err
}
