package services

import (
	"context"
	"fmt"

	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// caseOpeningService debits the case price, draws from the case's latest
// reward table and grants the payout. Callers run it inside one unit of work.
type caseOpeningService struct {
	catalogRepo     interfaces.CatalogRepository
	rewardTableRepo interfaces.RewardTableRepository
	inventoryRepo   interfaces.InventoryRepository
	drawRepo        interfaces.DrawRecordRepository
	ledger          interfaces.LedgerService
	draws           interfaces.DrawEngine
	eventPublisher  interfaces.EventPublisher
}

// NewCaseOpeningService creates a new case opening service
func NewCaseOpeningService(
	catalogRepo interfaces.CatalogRepository,
	rewardTableRepo interfaces.RewardTableRepository,
	inventoryRepo interfaces.InventoryRepository,
	drawRepo interfaces.DrawRecordRepository,
	ledger interfaces.LedgerService,
	draws interfaces.DrawEngine,
	eventPublisher interfaces.EventPublisher,
) interfaces.CaseOpeningService {
	return &caseOpeningService{
		catalogRepo:     catalogRepo,
		rewardTableRepo: rewardTableRepo,
		inventoryRepo:   inventoryRepo,
		drawRepo:        drawRepo,
		ledger:          ledger,
		draws:           draws,
		eventPublisher:  eventPublisher,
	}
}

// OpenCase opens one case for an account
func (s *caseOpeningService) OpenCase(ctx context.Context, accountID int64, caseKey string) (*entities.RewardOutcome, error) {
	opening := entities.NewCaseOpening(accountID, caseKey)

	outcome, err := s.open(ctx, opening)
	if err != nil {
		opening.Fail(err)
		log.WithFields(log.Fields{
			"account_id": accountID,
			"case_key":   caseKey,
			"history":    opening.History,
			"error":      err,
		}).Debug("Case opening rejected")
		return nil, err
	}

	return outcome, nil
}

// activeCase loads an openable case and the table version it opens with
func (s *caseOpeningService) activeCase(ctx context.Context, caseKey string) (*entities.Case, *entities.RewardTable, error) {
	c, err := s.catalogRepo.GetCase(ctx, caseKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get case: %w", err)
	}
	if c == nil || !c.Active {
		return nil, nil, fmt.Errorf("case %s: %w", caseKey, entities.ErrCaseUnavailable)
	}

	table, err := s.rewardTableRepo.GetLatest(ctx, c.RewardTableKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get reward table: %w", err)
	}
	if table == nil {
		return nil, nil, fmt.Errorf("case %s has no published table: %w", c.Key, entities.ErrCaseUnavailable)
	}
	return c, table, nil
}

func (s *caseOpeningService) open(ctx context.Context, opening *entities.CaseOpening) (*entities.RewardOutcome, error) {
	c, table, err := s.activeCase(ctx, opening.CaseKey)
	if err != nil {
		return nil, err
	}

	_, err = s.ledger.Debit(ctx, opening.AccountID, c.PriceCurrency, c.Price, entities.ReasonCaseOpen,
		entities.TransactionRef{Metadata: map[string]any{"case_key": c.Key}})
	if err != nil {
		return nil, fmt.Errorf("failed to pay for case: %w", err)
	}
	if err := opening.Advance(entities.CaseOpeningFundsReserved); err != nil {
		return nil, err
	}

	record, entry, err := s.draws.Draw(ctx, opening.AccountID, table)
	if err != nil {
		return nil, err
	}
	if err := opening.Advance(entities.CaseOpeningDrawn); err != nil {
		return nil, err
	}

	outcome := &entities.RewardOutcome{
		CaseKey:      c.Key,
		OutcomeID:    entry.OutcomeID,
		PayoutKind:   entry.Payout.Kind,
		PricePaid:    c.Price,
		DrawID:       record.ID,
		TableKey:     table.Key,
		TableVersion: table.Version,
	}
	if err := s.grant(ctx, opening.AccountID, c, record, entry.Payout, outcome); err != nil {
		return nil, err
	}

	balances, err := s.ledger.GetBalances(ctx, opening.AccountID)
	if err != nil {
		return nil, err
	}
	outcome.Balances = balances

	if err := opening.Advance(entities.CaseOpeningSettled); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.CaseOpenedEvent{
		AccountID:  opening.AccountID,
		CaseKey:    c.Key,
		OutcomeID:  entry.OutcomeID,
		PayoutKind: entry.Payout.Kind,
		DrawID:     record.ID,
		PricePaid:  c.Price,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish case opened event: %w", err)
	}

	return outcome, nil
}

// grant applies the payout of the resolved entry
func (s *caseOpeningService) grant(ctx context.Context, accountID int64, c *entities.Case, record *entities.DrawRecord, payout entities.PayoutSpec, outcome *entities.RewardOutcome) error {
	drawID := record.ID
	ref := entities.TransactionRef{
		DrawID:   &drawID,
		Metadata: map[string]any{"case_key": c.Key, "outcome_id": record.ResolvedOutcomeID},
	}

	switch payout.Kind {
	case entities.PayoutKindItem:
		item := &entities.InventoryItem{
			AccountID:    accountID,
			TemplateID:   payout.ItemTemplateID,
			State:        entities.ItemStateAvailable,
			SourceDrawID: &drawID,
		}
		if err := s.inventoryRepo.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to grant item: %w", err)
		}
		outcome.Item = item
		outcome.TemplateID = payout.ItemTemplateID

	case entities.PayoutKindFragments:
		currency := entities.FragmentCurrency(payout.ItemTemplateID)
		if _, err := s.ledger.Credit(ctx, accountID, currency, payout.Quantity, entities.ReasonCaseOpen, ref); err != nil {
			return fmt.Errorf("failed to grant fragments: %w", err)
		}
		outcome.TemplateID = payout.ItemTemplateID
		outcome.FragmentQuantity = payout.Quantity

	case entities.PayoutKindCurrency:
		if _, err := s.ledger.Credit(ctx, accountID, payout.Currency, payout.Amount, entities.ReasonCaseOpen, ref); err != nil {
			return fmt.Errorf("failed to grant currency: %w", err)
		}
		outcome.Currency = payout.Currency
		outcome.Amount = payout.Amount

	case entities.PayoutKindMultiplier:
		amount := entities.Payout(c.Price, payout.Multiplier)
		if amount > 0 {
			if _, err := s.ledger.Credit(ctx, accountID, c.PriceCurrency, amount, entities.ReasonCaseOpen, ref); err != nil {
				return fmt.Errorf("failed to grant multiplier payout: %w", err)
			}
		}
		outcome.Currency = c.PriceCurrency
		outcome.Amount = amount

	case entities.PayoutKindNothing:
	default:
		return fmt.Errorf("%w: unknown payout kind %q", entities.ErrDrawFailed, payout.Kind)
	}

	return nil
}

// ListCases returns the purchasable cases
func (s *caseOpeningService) ListCases(ctx context.Context) ([]*entities.Case, error) {
	cases, err := s.catalogRepo.ListActiveCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// GetCaseDrops lists every outcome of a case's latest table with its probability
func (s *caseOpeningService) GetCaseDrops(ctx context.Context, caseKey string) (*entities.CaseContents, error) {
	c, table, err := s.activeCase(ctx, caseKey)
	if err != nil {
		return nil, err
	}

	templates := make(map[int64]*entities.ItemTemplate)
	for _, e := range table.Entries {
		id := e.Payout.ItemTemplateID
		if id <= 0 {
			continue
		}
		if _, seen := templates[id]; seen {
			continue
		}
		template, err := s.catalogRepo.GetItemTemplate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get item template: %w", err)
		}
		templates[id] = template
	}

	return entities.NewCaseContents(c, table, templates), nil
}

// History returns an account's case openings, newest first. Retired cases are
// still named, and each entry carries the payout of the table version it drew from.
func (s *caseOpeningService) History(ctx context.Context, accountID int64, limit int) ([]*entities.CaseHistoryEntry, error) {
	cases, err := s.catalogRepo.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	byTable := make(map[string]*entities.Case, len(cases))
	tableKeys := make([]string, 0, len(cases))
	for _, c := range cases {
		if _, ok := byTable[c.RewardTableKey]; ok {
			continue
		}
		byTable[c.RewardTableKey] = c
		tableKeys = append(tableKeys, c.RewardTableKey)
	}

	records, err := s.drawRepo.ListByAccount(ctx, accountID, tableKeys, limit)
	if err != nil {
		return nil, err
	}

	type tableVersion struct {
		key     string
		version int
	}
	tables := make(map[tableVersion]*entities.RewardTable)

	history := make([]*entities.CaseHistoryEntry, 0, len(records))
	for _, record := range records {
		c := byTable[record.TableKey]
		entry := &entities.CaseHistoryEntry{
			DrawID:       record.ID,
			CaseKey:      c.Key,
			CaseName:     c.Name,
			OutcomeID:    record.ResolvedOutcomeID,
			TableVersion: record.TableVersion,
			OpenedAt:     record.CreatedAt,
		}

		tv := tableVersion{record.TableKey, record.TableVersion}
		table, ok := tables[tv]
		if !ok {
			table, err = s.rewardTableRepo.GetByVersion(ctx, tv.key, tv.version)
			if err != nil {
				return nil, fmt.Errorf("failed to get reward table: %w", err)
			}
			tables[tv] = table
		}
		if table != nil && record.ResolvedIndex >= 0 && record.ResolvedIndex < len(table.Entries) {
			payout := table.Entries[record.ResolvedIndex].Payout
			entry.Payout = &payout
		}

		history = append(history, entry)
	}
	return history, nil
}
