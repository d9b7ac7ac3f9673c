package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// Store is the Postgres dispatch store. It serves both the coordinator and the driver locator.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (s *Store) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// отменяем в случае паники
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetOrder returns the order or nil.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	return getOne(ctx, s.db, scanOrder, "order "+id,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetOrderByTracking returns the order with the tracking id or nil.
func (s *Store) GetOrderByTracking(ctx context.Context, trackingID string) (*domain.DeliveryOrder, error) {
	return getOne(ctx, s.db, scanOrder, "order by tracking "+trackingID,
		`SELECT `+orderColumns+` FROM orders WHERE tracking_id = $1`, trackingID)
}

// ListOrders returns orders matching f, newest first.
func (s *Store) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, col+" = $"+strconv.Itoa(len(args)))
	}
	add("status", string(f.Status))
	add("driver_id", f.DriverID)
	add("customer_id", f.CustomerID)
	add("order_ref", f.OrderRef)

	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limitArg(f.Limit))
	q += ` ORDER BY created_at DESC, id ASC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list, err := collect(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// GetAssignment returns the assignment or nil.
func (s *Store) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	return getOne(ctx, s.db, scanAssignment, "assignment "+id,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
}

// ListAssignmentsByOrder returns every assignment of an order, oldest first.
func (s *Store) ListAssignmentsByOrder(ctx context.Context, orderID string) ([]domain.Assignment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE order_id = $1 ORDER BY assigned_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list assignments of %q: %w", orderID, err)
	}
	return collect(rows, scanAssignment)
}

// GetRouteByAssignment returns the route materialized for an assignment or nil.
func (s *Store) GetRouteByAssignment(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	return getRouteByAssignment(ctx, s.db, assignmentID)
}

func getRouteByAssignment(ctx context.Context, q querier, assignmentID string) (*domain.DeliveryRoute, error) {
	return getOne(ctx, q, scanRoute, "route of assignment "+assignmentID,
		`SELECT `+routeColumns+` FROM routes WHERE assignment_id = $1`, assignmentID)
}

// GetPayoutByOrder returns the payout of an order or nil.
func (s *Store) GetPayoutByOrder(ctx context.Context, orderID string) (*domain.Payout, error) {
	return getOne(ctx, s.db, scanPayout, "payout of order "+orderID, `
        SELECT id, order_id, driver_id, base_cents, tip_cents, bonus_cents, total_cents, currency, status, created_at
        FROM payouts
        WHERE order_id = $1
    `, orderID)
}

func scanPayout(row pgx.Row) (*domain.Payout, error) {
	var (
		p      domain.Payout
		status string
	)
	if err := row.Scan(&p.ID, &p.OrderID, &p.DriverID, &p.BaseCents, &p.TipCents, &p.BonusCents,
		&p.TotalCents, &p.Currency, &status, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PayoutStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// OrdersDueForRetry returns ids of unassigned, non-escalated orders whose next attempt is due.
func (s *Store) OrdersDueForRetry(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return s.ids(ctx, "orders due for retry", `
        SELECT id FROM orders
        WHERE status = 'pending_assignment'
          AND NOT escalated
          AND next_attempt_at IS NOT NULL
          AND next_attempt_at <= $1
        ORDER BY next_attempt_at
        LIMIT $2
    `, now, limitArg(limit))
}

// ExpiredOffers returns ids of pending offers whose expiry has passed.
func (s *Store) ExpiredOffers(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return s.ids(ctx, "expired offers", `
        SELECT id FROM assignments
        WHERE status = 'pending_acceptance'
          AND offer_expires_at IS NOT NULL
          AND offer_expires_at <= $1
        ORDER BY offer_expires_at
        LIMIT $2
    `, now, limitArg(limit))
}

func (s *Store) ids(ctx context.Context, what, sql string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return ids, nil
}

var _ dispatchtx.Runner = (*Store)(nil)
