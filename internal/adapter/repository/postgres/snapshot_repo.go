package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// LoadSnapshot retrieves the assets and entities of a user in one read-only transaction
// Logic:
//  1. Load entities
//  2. Load assets with their category name (NULL when uncategorized)
//  3. Attach valuations, most recent first
//  4. Attach ownerships
//  5. Attach debts, without their payments
func (r *snapshotRepository) LoadSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ReportInput, error) {
	dbTx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	input := &domain.ReportInput{}

	input.Entities, err = loadEntities(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}

	input.Assets, err = loadAssets(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]*domain.Asset, len(input.Assets))
	for i := range input.Assets {
		index[input.Assets[i].ID] = &input.Assets[i]
	}

	if err := attachValuations(ctx, dbTx, userID, index); err != nil {
		return nil, err
	}
	if err := attachOwnerships(ctx, dbTx, userID, index); err != nil {
		return nil, err
	}
	if err := attachDebts(ctx, dbTx, userID, index); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return input, nil
}

func loadEntities(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]domain.Entity, error) {
	query := `
		SELECT id, user_id, name, kind
		FROM entities
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		var e domain.Entity
		var kind string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e.Kind = domain.EntityKind(kind)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}

func loadAssets(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]domain.Asset, error) {
	query := `
		SELECT a.id, a.name, c.name
		FROM assets a
		LEFT JOIN asset_categories c ON c.id = a.category_id
		WHERE a.user_id = $1
		ORDER BY a.id
	`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		var category sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &category); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		// Uncategorized assets keep an empty category
		if category.Valid {
			a.Category = domain.AssetCategory(category.String)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

func attachValuations(ctx context.Context, tx *sql.Tx, userID uuid.UUID, index map[uuid.UUID]*domain.Asset) error {
	query := `
		SELECT v.asset_id, v.value, v.currency, v.valuation_date
		FROM asset_valuations v
		JOIN assets a ON a.id = v.asset_id
		WHERE a.user_id = $1
		ORDER BY v.asset_id, v.valuation_date DESC, v.id DESC
	`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to list valuations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var assetID uuid.UUID
		var v domain.Valuation
		var valueStr string
		if err := rows.Scan(&assetID, &valueStr, &v.Currency, &v.Date); err != nil {
			return fmt.Errorf("failed to scan valuation: %w", err)
		}

		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return fmt.Errorf("failed to parse valuation value: %w", err)
		}
		v.Value = value

		if asset, ok := index[assetID]; ok {
			asset.Valuations = append(asset.Valuations, v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate valuations: %w", err)
	}

	return nil
}

func attachOwnerships(ctx context.Context, tx *sql.Tx, userID uuid.UUID, index map[uuid.UUID]*domain.Asset) error {
	query := `
		SELECT o.asset_id, o.entity_id, o.percentage
		FROM ownerships o
		JOIN assets a ON a.id = o.asset_id
		WHERE a.user_id = $1
	`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to list ownerships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.Ownership
		var percentageStr string
		if err := rows.Scan(&o.AssetID, &o.EntityID, &percentageStr); err != nil {
			return fmt.Errorf("failed to scan ownership: %w", err)
		}

		percentage, err := decimal.NewFromString(percentageStr)
		if err != nil {
			return fmt.Errorf("failed to parse ownership percentage: %w", err)
		}
		o.Percentage = percentage

		if asset, ok := index[o.AssetID]; ok {
			asset.Ownerships = append(asset.Ownerships, o)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate ownerships: %w", err)
	}

	return nil
}

func attachDebts(ctx context.Context, tx *sql.Tx, userID uuid.UUID, index map[uuid.UUID]*domain.Asset) error {
	query := `
		SELECT d.id, d.asset_id, d.name, d.initial_amount, d.interest_rate, d.duration_months, d.amortization_type, d.start_date, d.monthly_payment
		FROM debts d
		JOIN assets a ON a.id = d.asset_id
		WHERE a.user_id = $1
		ORDER BY d.start_date
	`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return fmt.Errorf("failed to scan debt: %w", err)
		}
		if asset, ok := index[debt.AssetID]; ok {
			asset.Debts = append(asset.Debts, *debt)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate debts: %w", err)
	}

	return nil
}
