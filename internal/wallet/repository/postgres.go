package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
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

func (r *PGRepository) ApplyDeltas(ctx context.Context, deltas []model.BottleDelta) ([]model.BottleWallet, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin wallet update")
	}
	defer tx.Rollback()

	wallets := []model.BottleWallet{}
	for i := range deltas {
		d := &deltas[i]

		var returnable bool
		err := tx.GetContext(ctx, &returnable, `SELECT is_returnable FROM products WHERE id = $1`, d.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperror.NotFound("product", d.ProductID)
			}
			return nil, errors.Wrap(err, "check product")
		}
		if !returnable {
			continue
		}

		// 1. Record the delta; a replayed order inserts nothing.
		res, err := tx.NamedExecContext(ctx, `
            INSERT INTO order_bottle_deltas (
                order_id, customer_id, product_id,
                filled_given, empty_taken, damaged_returned, created_at
            )
            VALUES (
                :order_id, :customer_id, :product_id,
                :filled_given, :empty_taken, :damaged_returned, :created_at
            )
            ON CONFLICT (order_id, product_id) DO NOTHING
        `, d)
		if err != nil {
			if postgres.IsForeignKeyViolation(err) {
				return nil, apperror.NotFound("customer", d.CustomerID)
			}
			return nil, errors.Wrap(err, "record bottle delta")
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "record bottle delta")
		}
		if rows == 0 {
			continue
		}

		// 2. Fold it into the wallet, creating the wallet on first use.
		var w model.BottleWallet
		err = tx.GetContext(ctx, &w, `
            INSERT INTO customer_bottle_wallets (customer_id, product_id, bottle_balance, updated_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (customer_id, product_id)
            DO UPDATE SET
                bottle_balance = customer_bottle_wallets.bottle_balance + EXCLUDED.bottle_balance,
                updated_at = EXCLUDED.updated_at
            RETURNING customer_id, product_id, bottle_balance, updated_at
        `, d.CustomerID, d.ProductID, d.Net(), d.CreatedAt)
		if err != nil {
			if postgres.IsOutOfRange(err) {
				return nil, apperror.Validation("wallet %s/%s balance out of range", d.CustomerID, d.ProductID)
			}
			return nil, errors.Wrap(err, fmt.Sprintf("update wallet %s/%s", d.CustomerID, d.ProductID))
		}
		wallets = append(wallets, w)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit wallet update")
	}
	return wallets, nil
}

func (r *PGRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.BottleWallet, error) {
	wallets := []model.BottleWallet{}
	err := r.DB.SelectContext(ctx, &wallets, `
        SELECT customer_id, product_id, bottle_balance, updated_at
        FROM customer_bottle_wallets
        WHERE customer_id = $1
        ORDER BY product_id ASC
    `, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "list wallets")
	}
	return wallets, nil
}
