package repository

import (
	"context"
	"errors"
	"fmt"

	"skinvault/database"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	caseColumns = `id, case_key, name, case_type, price_currency, price, reward_table_key, active, created_at`

	// Numerics are read as text so decimal parses them without float rounding
	gameColumns = `id, game_key, name, kind, stake_currency, min_bet, max_bet,
		win_multiplier::TEXT, win_probability::TEXT, reward_table_key, active`
)

type catalogRepository struct {
	q Queryable
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) interfaces.CatalogRepository {
	return &catalogRepository{q: db.Pool}
}

func newCatalogRepository(tx Queryable) interfaces.CatalogRepository {
	return &catalogRepository{q: tx}
}

// GetCase retrieves a case by key, nil if missing
func (r *catalogRepository) GetCase(ctx context.Context, key string) (*entities.Case, error) {
	c, err := scanCase(r.q.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE case_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s: %w", key, err)
	}
	return c, nil
}

// ListActiveCases returns all purchasable cases
func (r *catalogRepository) ListActiveCases(ctx context.Context) ([]*entities.Case, error) {
	return r.listCases(ctx, `SELECT `+caseColumns+` FROM cases WHERE active ORDER BY price, id`)
}

// ListCases returns every case, retired ones included
func (r *catalogRepository) ListCases(ctx context.Context) ([]*entities.Case, error) {
	return r.listCases(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
}

func (r *catalogRepository) listCases(ctx context.Context, query string) ([]*entities.Case, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*entities.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}
	return cases, nil
}

// GetGame retrieves a game by key, nil if missing
func (r *catalogRepository) GetGame(ctx context.Context, key string) (*entities.Game, error) {
	g, err := scanGame(r.q.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE game_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", key, err)
	}
	return g, nil
}

// ListActiveGames returns all playable games
func (r *catalogRepository) ListActiveGames(ctx context.Context) ([]*entities.Game, error) {
	rows, err := r.q.Query(ctx, `SELECT `+gameColumns+` FROM games WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*entities.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}

// GetItemTemplate retrieves an item template, nil if missing
func (r *catalogRepository) GetItemTemplate(ctx context.Context, id int64) (*entities.ItemTemplate, error) {
	query := `
		SELECT id, name, weapon, rarity, price, fragments_required, withdrawal_fee, image_url
		FROM item_templates
		WHERE id = $1
	`

	var t entities.ItemTemplate
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Weapon,
		&t.Rarity,
		&t.Price,
		&t.FragmentsRequired,
		&t.WithdrawalFee,
		&t.ImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item template %d: %w", id, err)
	}
	return &t, nil
}

func scanCase(row pgx.Row) (*entities.Case, error) {
	var c entities.Case
	var currency string
	err := row.Scan(
		&c.ID,
		&c.Key,
		&c.Name,
		&c.CaseType,
		&currency,
		&c.Price,
		&c.RewardTableKey,
		&c.Active,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.PriceCurrency = entities.Currency(currency)
	return &c, nil
}

func scanGame(row pgx.Row) (*entities.Game, error) {
	var g entities.Game
	var kind, currency, multiplier, probability string
	err := row.Scan(
		&g.ID,
		&g.Key,
		&g.Name,
		&kind,
		&currency,
		&g.MinBet,
		&g.MaxBet,
		&multiplier,
		&probability,
		&g.RewardTableKey,
		&g.Active,
	)
	if err != nil {
		return nil, err
	}
	g.Kind = entities.GameKind(kind)
	g.StakeCurrency = entities.Currency(currency)

	if g.WinMultiplier, err = decimal.NewFromString(multiplier); err != nil {
		return nil, fmt.Errorf("game %s has invalid multiplier %q: %w", g.Key, multiplier, err)
	}
	if g.WinProbability, err = decimal.NewFromString(probability); err != nil {
		return nil, fmt.Errorf("game %s has invalid probability %q: %w", g.Key, probability, err)
	}
	return &g, nil
}
