package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/fx"
	"cashflow/internal/logger"
	"cashflow/internal/models"
)

// DefaultAggregationParallelism bounds concurrent per-account loads when the
// configured value is not positive.
const DefaultAggregationParallelism = 4

// accountLedger pairs an account with the transactions loaded for it.
type accountLedger struct {
	Account      models.Account
	Transactions []models.Transaction
}

// aggregator holds what every read-only view needs: the store, the rate
// source and a clock.
type aggregator struct {
	db          *gorm.DB
	rates       fx.RateSource
	base        string
	now         func() time.Time
	parallelism int
}

func newAggregator(db *gorm.DB, rates fx.RateSource, parallelism int) aggregator {
	if parallelism <= 0 {
		parallelism = DefaultAggregationParallelism
	}
	base := string(models.CurrencyCAD)
	if rates != nil {
		base = rates.Base()
	}
	return aggregator{
		db:          db,
		rates:       rates,
		base:        base,
		now:         time.Now,
		parallelism: parallelism,
	}
}

// listAccounts returns the user's accounts, or just the one named by accountID.
func (a aggregator) listAccounts(ctx context.Context, userID string, accountID *string) ([]models.Account, error) {
	q := a.db.WithContext(ctx).Where("user_id = ?", userID)
	if accountID != nil {
		var account models.Account
		if err := q.Where("id = ?", *accountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return []models.Account{account}, nil
	}

	var accounts []models.Account
	if err := q.Order("created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// loadLedgers fetches every account's full transaction history, a bounded
// number of accounts at a time. The result keeps the order of accounts.
func (a aggregator) loadLedgers(ctx context.Context, accounts []models.Account) ([]accountLedger, error) {
	out := make([]accountLedger, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i := range accounts {
		g.Go(func() error {
			var txns []models.Transaction
			err := a.db.WithContext(gctx).
				Where("user_id = ? AND account_id = ?", accounts[i].UserID, accounts[i].ID).
				Find(&txns).Error
			if err != nil {
				return err
			}
			out[i] = accountLedger{Account: accounts[i], Transactions: txns}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return out, nil
}

// snapshotFor returns rates able to convert every account into the base
// currency. The feed is only called when some account needs conversion.
func (a aggregator) snapshotFor(ctx context.Context, accounts []models.Account) (*fx.Snapshot, error) {
	identity := fx.BaseOnly(a.base)
	needed := make([]string, 0, len(accounts))
	for i := range accounts {
		if identity.NeedsConversion(string(accounts[i].Currency)) {
			needed = append(needed, string(accounts[i].Currency))
		}
	}
	if len(needed) == 0 {
		return identity, nil
	}
	if a.rates == nil {
		return nil, apperrors.ErrRatesUnavailable
	}

	snap, err := a.rates.Latest(ctx)
	if err != nil {
		logger.Get().Errorw("failed to fetch exchange rates", "error", err, "base", a.base)
		return nil, apperrors.Wrap(apperrors.ErrRatesUnavailable, err)
	}
	for _, currency := range needed {
		if _, err := snap.Rate(currency); err != nil {
			logger.Get().Errorw("exchange rate missing from feed", "currency", currency, "base", snap.Base)
			return nil, apperrors.Wrap(apperrors.ErrRatesUnavailable, err)
		}
	}
	return snap, nil
}

// toBase converts amount held in currency into the base, rounded to cents.
func toBase(snap *fx.Snapshot, amount decimal.Decimal, currency models.Currency) (decimal.Decimal, error) {
	converted, err := snap.ToBase(amount, string(currency))
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrRatesUnavailable, err)
	}
	return converted.Round(2), nil
}
