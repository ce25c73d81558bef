package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/inventory"
	"github.com/fekuna/blueice-inventory-service/internal/inventory/dto"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/fekuna/blueice-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const productColumns = `id, name, sku, is_returnable, stock_filled, stock_empty, stock_damaged, created_at, updated_at`

func (r *PGRepository) ApplyMovement(ctx context.Context, productID string, mutate inventory.MutateFunc) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.Wrap(err, "begin stock movement")
	}
	defer tx.Rollback()

	// 1. Lock the stock record; concurrent movements on the same product queue here.
	var p model.Product
	err = tx.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", productID)
		}
		return nil, classify(err, "lock product")
	}

	// 2. Preconditions are evaluated against the locked row.
	movement, err := mutate(&p)
	if err != nil {
		return nil, err
	}

	// 3. Update counters
	_, err = tx.NamedExecContext(ctx, `
        UPDATE products
        SET stock_filled = :stock_filled,
            stock_empty = :stock_empty,
            stock_damaged = :stock_damaged,
            updated_at = :updated_at
        WHERE id = :id
    `, &p)
	if err != nil {
		return nil, classify(err, "update product stock")
	}

	// 4. Log Movement
	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO stock_movements (
            id, product_id, kind,
            filled_change, empty_change, damaged_change,
            filled_after, empty_after, damaged_after,
            reason, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :kind,
            :filled_change, :empty_change, :damaged_change,
            :filled_after, :empty_after, :damaged_after,
            :reason, :notes, :created_by, :created_at
        )
    `, movement)
	if err != nil {
		return nil, classify(err, "log movement")
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(err, "commit stock movement")
	}
	return &p, nil
}

func (r *PGRepository) Snapshot(ctx context.Context) ([]model.Product, map[string]int, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin inventory snapshot")
	}
	defer tx.Rollback()

	var products []model.Product
	if err := tx.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY name ASC, id ASC`); err != nil {
		return nil, nil, errors.Wrap(err, "select products")
	}

	var sums []struct {
		ProductID string `db:"product_id"`
		Total     int    `db:"total"`
	}
	err = tx.SelectContext(ctx, &sums, `
        SELECT product_id, COALESCE(SUM(bottle_balance), 0) AS total
        FROM customer_bottle_wallets
        WHERE bottle_balance > 0
        GROUP BY product_id
    `)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sum wallet balances")
	}

	withCustomers := make(map[string]int, len(sums))
	for _, s := range sums {
		withCustomers[s.ProductID] = s.Total
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "commit inventory snapshot")
	}
	return products, withCustomers, nil
}

func (r *PGRepository) ListBottleHolders(ctx context.Context, productID string) ([]model.BottleHolder, error) {
	query := `
        SELECT w.customer_id, c.name AS customer_name, c.phone AS customer_phone, c.address AS customer_address,
               w.product_id, p.name AS product_name, p.sku AS product_sku, w.bottle_balance
        FROM customer_bottle_wallets w
        JOIN customer_profiles c ON c.id = w.customer_id
        JOIN products p ON p.id = w.product_id
        WHERE w.bottle_balance > 0`
	args := []interface{}{}
	if productID != "" {
		query += ` AND w.product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY w.bottle_balance DESC, w.customer_id ASC, w.product_id ASC`

	holders := []model.BottleHolder{}
	if err := r.DB.SelectContext(ctx, &holders, query, args...); err != nil {
		return nil, errors.Wrap(err, "list bottle holders")
	}
	return holders, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	items := []model.StockMovement{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = string(f.Kind)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM stock_movements"+whereClause)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare movement count")
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, errors.Wrap(err, "count movements")
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare movement list")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "list movements")
	}
	return items, count, nil
}

// classify turns lost serialization races into ErrConflict so the usecase can retry.
func classify(err error, op string) error {
	if postgres.IsRetryable(err) {
		return fmt.Errorf("%s: %w", op, apperror.ErrConflict)
	}
	if postgres.IsOutOfRange(err) {
		return apperror.Validation("%s: stock counter out of range", op)
	}
	return errors.Wrap(err, op)
}
