package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"github.com/fekuna/blueice-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	var rt model.Route
	err := r.DB.GetContext(ctx, &rt, `SELECT id, name, default_driver_id FROM routes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find route")
	}
	return &rt, nil
}

func (r *PGRepository) ListCustomers(ctx context.Context, routeID string) ([]model.RouteCustomer, error) {
	customers := []model.RouteCustomer{}
	err := r.DB.SelectContext(ctx, &customers, `
        SELECT id, route_id, name, phone, address, geo_lat, geo_lng, sequence_order
        FROM customer_profiles
        WHERE route_id = $1
        ORDER BY sequence_order ASC NULLS LAST, id ASC
    `, routeID)
	if err != nil {
		return nil, errors.Wrap(err, "list route customers")
	}
	return customers, nil
}

func (r *PGRepository) UpdateSequence(ctx context.Context, routeID string, assignments []model.SequenceAssignment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin sequence update")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
        UPDATE customer_profiles
        SET sequence_order = $1
        WHERE id = $2 AND route_id = $3
    `)
	if err != nil {
		return errors.Wrap(err, "prepare sequence update")
	}
	defer stmt.Close()

	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.SequenceOrder, a.CustomerID, routeID)
		if err != nil {
			return errors.Wrapf(err, "update sequence of customer %s", a.CustomerID)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "update sequence")
		}
		if rows == 0 {
			// Customer moved off the route since it was read; abort the whole batch.
			return fmt.Errorf("customer %s left route %s: %w", a.CustomerID, routeID, apperror.ErrConflict)
		}
	}

	return errors.Wrap(tx.Commit(), "commit sequence update")
}
