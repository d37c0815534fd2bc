// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tinvest provides a client for the T-Invest (Tinkoff Invest) REST API.
//
// Every API method is a JSON POST to
// <base>/tinkoff.public.invest.api.contract.v1.<Service>/<Method> authenticated
// with a bearer token. The API is reachable under more than one base URL; each
// call tries the configured bases in order and fails only when all of them fail.
// There are no other retries.
//
// Numbers are encoded as Quotation (units + nano) and MoneyValue (Quotation +
// currency) messages, converted to decimals with the quotation package.
package tinvest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bufdev/tictl/internal/pkg/fallback"
	"github.com/bufdev/tictl/internal/pkg/quotation"
	"github.com/shopspring/decimal"
)

const (
	// servicePrefix is the gRPC-gateway path prefix for all services.
	servicePrefix = "/tinkoff.public.invest.api.contract.v1."
	// AccountStatusOpen is the status of an open account.
	AccountStatusOpen = "ACCOUNT_STATUS_OPEN"
	// defaultTimeout bounds a single HTTP request.
	defaultTimeout = 30 * time.Second
)

// DefaultBaseURLs are the production API base URLs, in fallback order.
var DefaultBaseURLs = []string{
	"https://invest-public-api.tbank.ru/rest",
	"https://invest-public-api.tinkoff.ru/rest",
}

// ErrNotFound is returned when the API reports that the requested entity does not exist.
//
// A call matches ErrNotFound only when every base URL answered NotFound. A
// NotFound from one base next to any other failure is an upstream failure.
var ErrNotFound = errors.New("tinvest: not found")

// APIError is a non-2xx API response.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Code is the gRPC status code from the body, if any.
	Code int
	// Message is the error message from the body, or the raw body.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("T-Invest API %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the response is an HTTP 404 or a gRPC NOT_FOUND.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == grpcCodeNotFound
}

// Client is the interface for the T-Invest API.
type Client interface {
	// GetAccounts returns all accounts of the token owner.
	GetAccounts(ctx context.Context) ([]Account, error)
	// GetPortfolio returns the portfolio of an account with prices in currency.
	GetPortfolio(ctx context.Context, accountID string, currency string) (*Portfolio, error)
	// GetPositions returns the money and security balances of an account.
	GetPositions(ctx context.Context, accountID string) (*Positions, error)
	// GetInstrumentByFIGI returns instrument metadata, or ErrNotFound.
	GetInstrumentByFIGI(ctx context.Context, figi string) (*Instrument, error)
	// GetInfo returns the raw user info response, used as an authorization self-test.
	GetInfo(ctx context.Context) (json.RawMessage, error)
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*client)

// ClientWithHTTPClient sets the HTTP client to use for requests.
func ClientWithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// ClientWithBaseURLs sets the base URLs to try, in order.
func ClientWithBaseURLs(baseURLs ...string) ClientOption {
	return func(c *client) {
		c.baseURLs = baseURLs
	}
}

// ClientWithTimeout sets the per-request timeout.
func ClientWithTimeout(timeout time.Duration) ClientOption {
	return func(c *client) {
		c.timeout = timeout
	}
}

// NewClient creates a new API client. The logger and token are required.
func NewClient(logger *slog.Logger, token string, options ...ClientOption) Client {
	c := &client{
		logger:     logger,
		token:      token,
		httpClient: http.DefaultClient,
		baseURLs:   DefaultBaseURLs,
		timeout:    defaultTimeout,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Quotation is a fixed-point number: units plus nano billionths.
type Quotation struct {
	Units json.Number `json:"units"`
	Nano  int32       `json:"nano"`
}

// Decimal converts the quotation to a decimal. A nil quotation is zero.
func (q *Quotation) Decimal() (decimal.Decimal, error) {
	if q == nil {
		return decimal.Zero, nil
	}
	return quotation.ToDecimal(q.Units.String(), q.Nano)
}

// MoneyValue is a Quotation with a currency.
type MoneyValue struct {
	Currency string      `json:"currency"`
	Units    json.Number `json:"units"`
	Nano     int32       `json:"nano"`
}

// Decimal converts the amount to a decimal. A nil value is zero.
func (m *MoneyValue) Decimal() (decimal.Decimal, error) {
	if m == nil {
		return decimal.Zero, nil
	}
	return quotation.ToDecimal(m.Units.String(), m.Nano)
}

// Account is a brokerage account.
type Account struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Portfolio is the response of OperationsService/GetPortfolio.
type Portfolio struct {
	AccountID string              `json:"accountId"`
	Positions []PortfolioPosition `json:"positions"`
}

// PortfolioPosition is a single security position in a portfolio.
type PortfolioPosition struct {
	FIGI           string `json:"figi"`
	InstrumentType string `json:"instrumentType"`
	// Quantity is the number of pieces held.
	Quantity             *Quotation  `json:"quantity"`
	AveragePositionPrice *MoneyValue `json:"averagePositionPrice"`
	CurrentPrice         *MoneyValue `json:"currentPrice"`
	// The snake_case variants are sent by some gateway versions.
	AveragePositionPriceSnake *MoneyValue `json:"average_position_price"`
	CurrentPriceSnake         *MoneyValue `json:"current_price"`
}

// GetCurrentPrice returns the current price per piece from whichever field is present.
func (p *PortfolioPosition) GetCurrentPrice() *MoneyValue {
	if p.CurrentPrice != nil {
		return p.CurrentPrice
	}
	return p.CurrentPriceSnake
}

// GetAveragePositionPrice returns the average price per piece from whichever field is present.
func (p *PortfolioPosition) GetAveragePositionPrice() *MoneyValue {
	if p.AveragePositionPrice != nil {
		return p.AveragePositionPrice
	}
	return p.AveragePositionPriceSnake
}

// Positions is the response of OperationsService/GetPositions.
type Positions struct {
	// Money is the available cash per currency.
	Money []MoneyValue `json:"money"`
	// Blocked is the cash blocked in active orders per currency.
	Blocked []MoneyValue `json:"blocked"`
}

// Instrument is instrument metadata from InstrumentsService/GetInstrumentBy.
type Instrument struct {
	FIGI           string `json:"figi"`
	Ticker         string `json:"ticker"`
	Lot            int64  `json:"lot"`
	Currency       string `json:"currency"`
	Name           string `json:"name"`
	IssuerName     string `json:"issuerName"`
	InstrumentType string `json:"instrumentType"`
	Type           string `json:"type"`
	// NominalCurrency is set on some bond payloads without Currency.
	NominalCurrency string `json:"nominalCurrency"`
}

// *** PRIVATE ***

// grpcCodeNotFound is the gRPC NOT_FOUND status code.
const grpcCodeNotFound = 5

type client struct {
	logger     *slog.Logger
	token      string
	httpClient *http.Client
	baseURLs   []string
	timeout    time.Duration
}

// instrumentResponse is the response of InstrumentsService/GetInstrumentBy.
// Depending on the gateway version the payload is under instrument or a type-specific key.
type instrumentResponse struct {
	Instrument *Instrument `json:"instrument"`
	Share      *Instrument `json:"share"`
	Bond       *Instrument `json:"bond"`
	ETF        *Instrument `json:"etf"`
	Future     *Instrument `json:"future"`
}

// errorResponse is the JSON body of a gateway error.
type errorResponse struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (c *client) GetAccounts(ctx context.Context) ([]Account, error) {
	var response struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.call(ctx, "UsersService/GetAccounts", struct{}{}, &response); err != nil {
		return nil, err
	}
	return response.Accounts, nil
}

func (c *client) GetPortfolio(ctx context.Context, accountID string, currency string) (*Portfolio, error) {
	request := struct {
		AccountID string `json:"accountId"`
		Currency  string `json:"currency"`
	}{
		AccountID: accountID,
		Currency:  currency,
	}
	var portfolio Portfolio
	if err := c.call(ctx, "OperationsService/GetPortfolio", request, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (c *client) GetPositions(ctx context.Context, accountID string) (*Positions, error) {
	request := struct {
		AccountID string `json:"accountId"`
	}{
		AccountID: accountID,
	}
	var positions Positions
	if err := c.call(ctx, "OperationsService/GetPositions", request, &positions); err != nil {
		return nil, err
	}
	return &positions, nil
}

func (c *client) GetInstrumentByFIGI(ctx context.Context, figi string) (*Instrument, error) {
	request := struct {
		IDType string `json:"idType"`
		ID     string `json:"id"`
	}{
		IDType: "INSTRUMENT_ID_TYPE_FIGI",
		ID:     figi,
	}
	var response instrumentResponse
	if err := c.call(ctx, "InstrumentsService/GetInstrumentBy", request, &response); err != nil {
		return nil, err
	}
	for _, instrument := range []*Instrument{response.Instrument, response.Share, response.Bond, response.ETF, response.Future} {
		if instrument != nil {
			return instrument, nil
		}
	}
	return nil, ErrNotFound
}

func (c *client) GetInfo(ctx context.Context) (json.RawMessage, error) {
	var response json.RawMessage
	if err := c.call(ctx, "UsersService/GetInfo", struct{}{}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// call POSTs request to method under each base URL in turn and decodes the first successful response.
func (c *client) call(ctx context.Context, method string, request any, response any) error {
	if c.token == "" {
		return errors.New("T-Invest token is required")
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}
	notFoundCount := 0
	body, err := fallback.Do(ctx, c.baseURLs, 0,
		func(ctx context.Context, baseURL string) ([]byte, error) {
			body, err := c.post(ctx, strings.TrimRight(baseURL, "/")+servicePrefix+method, payload)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.NotFound() {
				notFoundCount++
			}
			return body, err
		},
	)
	if err != nil {
		if notFoundCount == len(c.baseURLs) {
			return fmt.Errorf("calling %s: %w", method, errors.Join(ErrNotFound, err))
		}
		return fmt.Errorf("calling %s: %w", method, err)
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("parsing %s response: %w", method, err)
	}
	return nil
}

// post performs a single HTTP request and returns the body of a 2xx response.
func (c *client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.logger.Debug("tinvest request", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && (errResp.Message != "" || errResp.Code != 0) {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Message
		if errResp.Description != "" {
			apiErr.Message += ": " + errResp.Description
		}
	}
	c.logger.Warn("tinvest request failed", "url", url, "status", resp.StatusCode, "code", apiErr.Code)
	return nil, apiErr
}
