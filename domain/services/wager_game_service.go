package services

import (
	"context"
	"fmt"

	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	"github.com/shopspring/decimal"
)

// wagerGameService resolves instant wager games in one debit-draw-credit pass
type wagerGameService struct {
	catalogRepo     interfaces.CatalogRepository
	rewardTableRepo interfaces.RewardTableRepository
	ledger          interfaces.LedgerService
	draws           interfaces.DrawEngine
	eventPublisher  interfaces.EventPublisher
}

// NewWagerGameService creates a new wager game service
func NewWagerGameService(
	catalogRepo interfaces.CatalogRepository,
	rewardTableRepo interfaces.RewardTableRepository,
	ledger interfaces.LedgerService,
	draws interfaces.DrawEngine,
	eventPublisher interfaces.EventPublisher,
) interfaces.WagerGameService {
	return &wagerGameService{
		catalogRepo:     catalogRepo,
		rewardTableRepo: rewardTableRepo,
		ledger:          ledger,
		draws:           draws,
		eventPublisher:  eventPublisher,
	}
}

// PlayGame stakes, draws and pays out
func (s *wagerGameService) PlayGame(ctx context.Context, accountID int64, gameKey string, stake int64) (*entities.GameOutcome, error) {
	game, err := s.catalogRepo.GetGame(ctx, gameKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil || !game.Active {
		return nil, fmt.Errorf("game %s: %w", gameKey, entities.ErrGameUnavailable)
	}

	// Bet bounds are checked before any money moves
	if err := game.ValidateStake(stake); err != nil {
		return nil, err
	}

	var table *entities.RewardTable
	if game.Kind == entities.GameKindTable {
		if game.RewardTableKey == nil {
			return nil, fmt.Errorf("game %s has no reward table: %w", gameKey, entities.ErrGameUnavailable)
		}
		table, err = s.rewardTableRepo.GetLatest(ctx, *game.RewardTableKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get reward table: %w", err)
		}
		if table == nil {
			return nil, fmt.Errorf("game %s has no published table: %w", gameKey, entities.ErrGameUnavailable)
		}
		if err := table.CheckStakePayouts(); err != nil {
			return nil, fmt.Errorf("game %s: %w: %v", gameKey, entities.ErrGameUnavailable, err)
		}
	}

	_, err = s.ledger.Debit(ctx, accountID, game.StakeCurrency, stake, entities.ReasonGameStake,
		entities.TransactionRef{Metadata: map[string]any{"game_key": game.Key}})
	if err != nil {
		return nil, fmt.Errorf("failed to place stake: %w", err)
	}

	outcome := &entities.GameOutcome{
		GameKey:    game.Key,
		Stake:      stake,
		Currency:   game.StakeCurrency,
		Multiplier: decimal.Zero,
	}

	switch game.Kind {
	case entities.GameKindTable:
		record, entry, err := s.draws.Draw(ctx, accountID, table)
		if err != nil {
			return nil, err
		}
		outcome.DrawID = record.ID
		outcome.OutcomeID = entry.OutcomeID
		if entry.Payout.Kind == entities.PayoutKindMultiplier {
			outcome.Multiplier = entry.Payout.Multiplier
		}

	case entities.GameKindChance:
		record, won, err := s.draws.DrawChance(ctx, accountID, game.Key, game.WinProbability)
		if err != nil {
			return nil, err
		}
		outcome.DrawID = record.ID
		outcome.OutcomeID = record.ResolvedOutcomeID
		if won {
			outcome.Multiplier = game.WinMultiplier
		}

	default:
		return nil, fmt.Errorf("game %s has unknown kind %q: %w", gameKey, game.Kind, entities.ErrGameUnavailable)
	}

	outcome.Payout = entities.Payout(stake, outcome.Multiplier)
	outcome.Won = outcome.Payout > 0

	if outcome.Payout > 0 {
		drawID := outcome.DrawID
		_, err := s.ledger.Credit(ctx, accountID, game.StakeCurrency, outcome.Payout, entities.ReasonGamePayout,
			entities.TransactionRef{
				DrawID:   &drawID,
				Metadata: map[string]any{"game_key": game.Key, "multiplier": outcome.Multiplier.String()},
			})
		if err != nil {
			return nil, fmt.Errorf("failed to pay out: %w", err)
		}
	}

	balances, err := s.ledger.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}
	outcome.Balances = balances

	if err := s.eventPublisher.Publish(events.GamePlayedEvent{
		AccountID: accountID,
		GameKey:   game.Key,
		Stake:     stake,
		Payout:    outcome.Payout,
		Won:       outcome.Won,
		DrawID:    outcome.DrawID,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish game event: %w", err)
	}

	return outcome, nil
}

// ListGames returns the playable games
func (s *wagerGameService) ListGames(ctx context.Context) ([]*entities.Game, error) {
	games, err := s.catalogRepo.ListActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}
