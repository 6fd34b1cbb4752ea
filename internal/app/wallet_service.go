package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"quickgig/internal/common"
	"quickgig/internal/domain/wallet"
)

// WalletService is the wallet ledger surface: listing, the pending→paid
// transition driven by the external payment process, and the earnings
// summary fold.
type WalletService struct {
	wallets wallet.Repository
	logger  zerolog.Logger
	metrics EngineMetrics
}

func NewWalletService(wallets wallet.Repository, logger zerolog.Logger, metrics EngineMetrics) *WalletService {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &WalletService{wallets: wallets, logger: logger, metrics: metrics}
}

func (s *WalletService) Get(ctx context.Context, id common.UUID) (*wallet.Entry, error) {
	return s.wallets.GetByID(ctx, id)
}

func (s *WalletService) List(ctx context.Context, studentID common.UUID, status *wallet.Status, sort wallet.Sort) ([]wallet.Entry, error) {
	if status != nil && *status != wallet.StatusPending && *status != wallet.StatusPaid {
		return nil, common.NewValidationError("invalid status filter", map[string]string{"status": "status must be pending or paid"})
	}
	return s.wallets.ListByStudent(ctx, studentID, status, sort)
}

// MarkPaid records that the external payment process settled an entry. Legal
// only from pending; payment date is immutable afterwards.
func (s *WalletService) MarkPaid(ctx context.Context, entryID common.UUID, paymentDate time.Time) (*wallet.Entry, error) {
	if paymentDate.IsZero() {
		return nil, common.NewValidationError("invalid payment date", map[string]string{"payment_date": "payment date is required"})
	}
	updated, err := s.wallets.MarkPaid(ctx, entryID, paymentDate)
	if err != nil {
		return nil, err
	}
	s.metrics.PaymentRecorded()
	s.logger.Info().Str("wallet_entry_id", updated.ID.String()).Time("payment_date", paymentDate).Msg("wallet entry paid")
	return updated, nil
}

func (s *WalletService) Summarize(ctx context.Context, studentID common.UUID) (*wallet.Summary, error) {
	entries, err := s.wallets.ListByStudent(ctx, studentID, nil, wallet.SortDate)
	if err != nil {
		return nil, err
	}
	summary := wallet.Summarize(entries)
	return &summary, nil
}
