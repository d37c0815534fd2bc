// Copyright 2026 Peter Edge
//
// All rights reserved.

package tinvest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPortfolioFallsBackToSecondBase(t *testing.T) {
	t.Parallel()
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	t.Cleanup(primary.Close)
	var gotAuth, gotPath string
	var gotBody map[string]string
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = io.WriteString(w, `{
			"accountId": "2000",
			"positions": [
				{
					"figi": "BBG004730N88",
					"instrumentType": "share",
					"quantity": {"units": "20", "nano": 0},
					"currentPrice": {"currency": "rub", "units": "250", "nano": 500000000},
					"averagePositionPrice": {"currency": "rub", "units": 240, "nano": 0}
				},
				{
					"figi": "BBG00T22WKV5",
					"instrumentType": "bond",
					"quantity": {"units": "3"},
					"current_price": {"currency": "rub", "units": "990"}
				}
			]
		}`)
	}))
	t.Cleanup(secondary.Close)

	client := NewClient(slog.New(slog.DiscardHandler), "t.secret", ClientWithBaseURLs(primary.URL, secondary.URL+"/"))
	portfolio, err := client.GetPortfolio(context.Background(), "2000", "RUB")
	require.NoError(t, err)
	require.Equal(t, "Bearer t.secret", gotAuth)
	require.Equal(t, "/tinkoff.public.invest.api.contract.v1.OperationsService/GetPortfolio", gotPath)
	require.Equal(t, map[string]string{"accountId": "2000", "currency": "RUB"}, gotBody)
	require.Len(t, portfolio.Positions, 2)

	share := portfolio.Positions[0]
	quantity, err := share.Quantity.Decimal()
	require.NoError(t, err)
	require.Equal(t, "20", quantity.String())
	price, err := share.GetCurrentPrice().Decimal()
	require.NoError(t, err)
	require.Equal(t, "250.5", price.String())
	average, err := share.GetAveragePositionPrice().Decimal()
	require.NoError(t, err)
	require.Equal(t, "240", average.String())

	bond := portfolio.Positions[1]
	price, err = bond.GetCurrentPrice().Decimal()
	require.NoError(t, err)
	require.Equal(t, "990", price.String())
	average, err = bond.GetAveragePositionPrice().Decimal()
	require.NoError(t, err)
	require.True(t, average.IsZero())
}

func TestCallAllBasesFail(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code": 16, "message": "authentication token is missing or invalid", "description": "40003"}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(slog.New(slog.DiscardHandler), "bad", ClientWithBaseURLs(server.URL, server.URL))
	_, err := client.GetAccounts(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, 16, apiErr.Code)
	require.Contains(t, apiErr.Message, "authentication token is missing or invalid")
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestGetInstrumentByFIGI(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			IDType string `json:"idType"`
			ID     string `json:"id"`
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &request)
		switch request.ID {
		case "SHARE":
			_, _ = io.WriteString(w, `{"instrument": {"figi": "SHARE", "ticker": "SBER", "lot": 10, "currency": "rub", "name": "Сбер Банк", "instrumentType": "share"}}`)
		case "BOND":
			_, _ = io.WriteString(w, `{"bond": {"figi": "BOND", "ticker": "SU26238", "lot": 1, "nominalCurrency": "rub", "issuerName": "Минфин"}}`)
		case "EMPTY":
			_, _ = io.WriteString(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code": 5, "message": "instrument not found"}`)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(slog.New(slog.DiscardHandler), "t.token", ClientWithBaseURLs(server.URL))
	ctx := context.Background()

	share, err := client.GetInstrumentByFIGI(ctx, "SHARE")
	require.NoError(t, err)
	require.Equal(t, "SBER", share.Ticker)
	require.Equal(t, int64(10), share.Lot)

	bond, err := client.GetInstrumentByFIGI(ctx, "BOND")
	require.NoError(t, err)
	require.Equal(t, "Минфин", bond.IssuerName)
	require.Equal(t, "rub", bond.NominalCurrency)

	_, err = client.GetInstrumentByFIGI(ctx, "EMPTY")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetInstrumentByFIGI(ctx, "MISSING")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetInstrumentByFIGINotFoundOnEveryBase(t *testing.T) {
	t.Parallel()
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code": 5, "message": "instrument not found"}`)
	}))
	t.Cleanup(notFound.Close)
	unavailable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(unavailable.Close)
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name         string
		baseURLs     []string
		wantNotFound bool
	}{
		{name: "not_found_then_unavailable", baseURLs: []string{notFound.URL, unavailable.URL}},
		{name: "unavailable_then_not_found", baseURLs: []string{unavailable.URL, notFound.URL}},
		{name: "not_found_everywhere", baseURLs: []string{notFound.URL, notFound.URL}, wantNotFound: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			client := NewClient(logger, "t.token", ClientWithBaseURLs(test.baseURLs...))
			_, err := client.GetInstrumentByFIGI(ctx, "BBG000000001")
			require.Error(t, err)
			if test.wantNotFound {
				require.ErrorIs(t, err, ErrNotFound)
			} else {
				require.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestGetPositionsAndInfo(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case servicePrefix + "OperationsService/GetPositions":
			_, _ = io.WriteString(w, `{"money": [{"currency": "rub", "units": "1500", "nano": 250000000}, {"currency": "usd", "units": "3"}]}`)
		case servicePrefix + "UsersService/GetInfo":
			_, _ = io.WriteString(w, `{"premStatus": false, "tariff": "investor"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(slog.New(slog.DiscardHandler), "t.token", ClientWithBaseURLs(server.URL))
	positions, err := client.GetPositions(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, positions.Money, 2)
	amount, err := positions.Money[0].Decimal()
	require.NoError(t, err)
	require.Equal(t, "1500.25", amount.String())

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, `{"premStatus": false, "tariff": "investor"}`, string(info))
}

func TestCallRequiresToken(t *testing.T) {
	t.Parallel()
	client := NewClient(slog.New(slog.DiscardHandler), "")
	_, err := client.GetAccounts(context.Background())
	require.Error(t, err)
}
