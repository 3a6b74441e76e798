package services

import (
	"context"
	"encoding/hex"
	"fmt"

	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// drawEngine produces draws that can be recomputed from their persisted seed
type drawEngine struct {
	drawRepo        interfaces.DrawRecordRepository
	rewardTableRepo interfaces.RewardTableRepository
	random          interfaces.RandomSource
	eventPublisher  interfaces.EventPublisher
}

// NewDrawEngine creates a new draw engine
func NewDrawEngine(
	drawRepo interfaces.DrawRecordRepository,
	rewardTableRepo interfaces.RewardTableRepository,
	random interfaces.RandomSource,
	eventPublisher interfaces.EventPublisher,
) interfaces.DrawEngine {
	return &drawEngine{
		drawRepo:        drawRepo,
		rewardTableRepo: rewardTableRepo,
		random:          random,
		eventPublisher:  eventPublisher,
	}
}

// Draw resolves a reward table and persists the record before returning
func (e *drawEngine) Draw(ctx context.Context, accountID int64, table *entities.RewardTable) (*entities.DrawRecord, *entities.RewardEntry, error) {
	if table == nil {
		return nil, nil, fmt.Errorf("%w: no reward table", entities.ErrDrawFailed)
	}
	if err := table.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entities.ErrDrawFailed, err)
	}

	seed, err := e.seed(ctx)
	if err != nil {
		return nil, nil, err
	}

	raw, err := entities.DeriveDrawValue(seed, int64(table.TotalWeight))
	if err != nil {
		return nil, nil, err
	}

	entry, index, err := table.Resolve(entities.Weight(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entities.ErrDrawFailed, err)
	}

	record := &entities.DrawRecord{
		AccountID:         accountID,
		TableKey:          table.Key,
		TableVersion:      table.Version,
		Kind:              entities.DrawKindTable,
		Seed:              hex.EncodeToString(seed),
		TotalWeight:       int64(table.TotalWeight),
		RawDrawValue:      raw,
		ResolvedIndex:     index,
		ResolvedOutcomeID: entry.OutcomeID,
	}
	if table.ID != 0 {
		tableID := table.ID
		record.TableID = &tableID
	}

	if err := e.persist(ctx, record); err != nil {
		return nil, nil, err
	}

	return record, entry, nil
}

// DrawChance wins when the draw value falls below probability × ProbabilityScale
func (e *drawEngine) DrawChance(ctx context.Context, accountID int64, gameKey string, probability decimal.Decimal) (*entities.DrawRecord, bool, error) {
	threshold, err := entities.WinThreshold(probability)
	if err != nil {
		return nil, false, fmt.Errorf("%w: game %s: %v", entities.ErrDrawFailed, gameKey, err)
	}

	seed, err := e.seed(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, err := entities.DeriveDrawValue(seed, entities.ProbabilityScale)
	if err != nil {
		return nil, false, err
	}

	won := raw < threshold
	record := &entities.DrawRecord{
		AccountID:         accountID,
		TableKey:          gameKey,
		Kind:              entities.DrawKindChance,
		Seed:              hex.EncodeToString(seed),
		TotalWeight:       entities.ProbabilityScale,
		RawDrawValue:      raw,
		ResolvedIndex:     1,
		ResolvedOutcomeID: entities.OutcomeLoss,
		WinThreshold:      &threshold,
	}
	if won {
		record.ResolvedIndex = 0
		record.ResolvedOutcomeID = entities.OutcomeWin
	}

	if err := e.persist(ctx, record); err != nil {
		return nil, false, err
	}

	return record, won, nil
}

// Verify recomputes a persisted draw from its seed
func (e *drawEngine) Verify(ctx context.Context, drawID int64) (*entities.DrawVerification, error) {
	record, err := e.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("draw %d: %w", drawID, entities.ErrNotFound)
	}

	var table *entities.RewardTable
	if record.Kind == entities.DrawKindTable {
		table, err = e.rewardTableRepo.GetByVersion(ctx, record.TableKey, record.TableVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to get reward table: %w", err)
		}
		if table == nil {
			return &entities.DrawVerification{
				Record: record,
				Reason: fmt.Sprintf("reward table %s v%d not found", record.TableKey, record.TableVersion),
			}, nil
		}
	}

	verification := &entities.DrawVerification{Record: record, Verified: true}
	if err := entities.Verify(record, table); err != nil {
		verification.Verified = false
		verification.Reason = err.Error()
		log.WithFields(log.Fields{
			"draw_id":   drawID,
			"table_key": record.TableKey,
			"error":     err,
		}).Error("Draw verification failed")
	}

	return verification, nil
}

// seed reads fresh randomness and fails closed
func (e *drawEngine) seed(ctx context.Context) ([]byte, error) {
	seed, err := e.random.Seed(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrRandomUnavailable, err)
	}
	if len(seed) != entities.SeedSize {
		return nil, fmt.Errorf("%w: got %d seed bytes", entities.ErrRandomUnavailable, len(seed))
	}
	return seed, nil
}

func (e *drawEngine) persist(ctx context.Context, record *entities.DrawRecord) error {
	if err := e.drawRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to persist draw: %w", err)
	}

	if err := e.eventPublisher.Publish(events.DrawRecordedEvent{
		DrawID:       record.ID,
		AccountID:    record.AccountID,
		Kind:         record.Kind,
		TableKey:     record.TableKey,
		TableVersion: record.TableVersion,
		Seed:         record.Seed,
		RawDrawValue: record.RawDrawValue,
		TotalWeight:  record.TotalWeight,
		OutcomeID:    record.ResolvedOutcomeID,
	}); err != nil {
		return fmt.Errorf("failed to publish draw event: %w", err)
	}

	return nil
}
