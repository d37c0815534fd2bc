// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlreport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bufdev/tictl/internal/pkg/tinvest"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/shopspring/decimal"
)

// Account is an open brokerage account.
type Account struct {
	ID   string
	Name string
}

// Provider provides accounts, positions and cash balances.
type Provider interface {
	// ListAccounts lists open accounts.
	ListAccounts(ctx context.Context) ([]Account, error)
	// ListPositions lists the security positions of an account, priced in the reporting currency.
	ListPositions(ctx context.Context, accountID string) ([]tictlposition.RawPosition, error)
	// GetCash returns the cash balance of an account in the reporting currency, or zero.
	GetCash(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// NewProvider returns a new Provider backed by a T-Invest client.
func NewProvider(logger *slog.Logger, client tinvest.Client, currency string) Provider {
	return &provider{
		logger:   logger,
		client:   client,
		currency: strings.ToUpper(currency),
	}
}

// *** PRIVATE ***

type provider struct {
	logger   *slog.Logger
	client   tinvest.Client
	currency string
}

func (p *provider) ListAccounts(ctx context.Context) ([]Account, error) {
	apiAccounts, err := p.client.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var accounts []Account
	for _, apiAccount := range apiAccounts {
		if apiAccount.Status != tinvest.AccountStatusOpen {
			p.logger.Debug("skipping account", "account_id", apiAccount.ID, "status", apiAccount.Status)
			continue
		}
		accounts = append(accounts, Account{ID: apiAccount.ID, Name: apiAccount.Name})
	}
	return accounts, nil
}

func (p *provider) ListPositions(ctx context.Context, accountID string) ([]tictlposition.RawPosition, error) {
	portfolio, err := p.client.GetPortfolio(ctx, accountID, p.currency)
	if err != nil {
		return nil, err
	}
	positions := make([]tictlposition.RawPosition, 0, len(portfolio.Positions))
	for i := range portfolio.Positions {
		apiPosition := &portfolio.Positions[i]
		quantity, err := apiPosition.Quantity.Decimal()
		if err != nil {
			return nil, fmt.Errorf("account %s position %s quantity: %w", accountID, apiPosition.FIGI, err)
		}
		currentPrice, err := apiPosition.GetCurrentPrice().Decimal()
		if err != nil {
			return nil, fmt.Errorf("account %s position %s current price: %w", accountID, apiPosition.FIGI, err)
		}
		averagePrice, err := apiPosition.GetAveragePositionPrice().Decimal()
		if err != nil {
			return nil, fmt.Errorf("account %s position %s average price: %w", accountID, apiPosition.FIGI, err)
		}
		positions = append(
			positions,
			tictlposition.RawPosition{
				FIGI:           apiPosition.FIGI,
				InstrumentType: apiPosition.InstrumentType,
				QuantityPieces: quantity,
				CurrentPrice:   currentPrice,
				AveragePrice:   averagePrice,
			},
		)
	}
	return positions, nil
}

func (p *provider) GetCash(ctx context.Context, accountID string) (decimal.Decimal, error) {
	positions, err := p.client.GetPositions(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	amount := decimal.Zero
	for i := range positions.Money {
		moneyValue := &positions.Money[i]
		if !strings.EqualFold(moneyValue.Currency, p.currency) {
			p.logger.Warn(
				"skipping cash balance outside the reporting currency",
				"account_id", accountID,
				"currency", strings.ToUpper(moneyValue.Currency),
			)
			continue
		}
		value, err := moneyValue.Decimal()
		if err != nil {
			return decimal.Zero, fmt.Errorf("account %s cash: %w", accountID, err)
		}
		amount = amount.Add(value)
	}
	return amount, nil
}
