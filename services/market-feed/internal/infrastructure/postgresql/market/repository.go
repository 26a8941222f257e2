package market

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/muhammadchandra19/exchange/pkg/fixedpoint"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	eventv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange/services/market-feed/internal/domain/market/v1"
)

const (
	loadMarketIDsQuery = `SELECT market_id FROM markets ORDER BY market_id`

	listMarketsQuery = `SELECT m.market_id, m.name, m.base_name_generic,
	b.account_address, b.module_name, b.struct_name, b.symbol, b.name, b.decimals,
	q.account_address, q.module_name, q.struct_name, q.symbol, q.name, q.decimals,
	m.lot_size, m.tick_size, m.min_size, m.underwriter_id, m.created_at
FROM markets m
LEFT JOIN coins b ON b.account_address = m.base_account_address
	AND b.module_name = m.base_module_name
	AND b.struct_name = m.base_struct_name
LEFT JOIN coins q ON q.account_address = m.quote_account_address
	AND q.module_name = m.quote_module_name
	AND q.struct_name = m.quote_struct_name
ORDER BY m.market_id`

	listRegistrationEventsQuery = `SELECT market_id, time,
	base_account_address, base_module_name, base_struct_name, base_name_generic,
	quote_account_address, quote_module_name, quote_struct_name,
	lot_size, tick_size, min_size, underwriter_id
FROM market_registration_events
ORDER BY market_id`
)

// repository is the postgres backed market registry.
type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// LoadMarketIDs loads the identifiers of every registered market.
func (r *repository) LoadMarketIDs(ctx context.Context) (marketv1.Snapshot, error) {
	rows, err := r.db.Query(ctx, loadMarketIDsQuery)
	if err != nil {
		return marketv1.Snapshot{}, newStoreError("load market ids", err)
	}
	defer rows.Close()

	var ids []marketv1.MarketID
	for rows.Next() {
		var raw pgtype.Numeric
		if err := rows.Scan(&raw); err != nil {
			return marketv1.Snapshot{}, newStoreError("load market ids", err)
		}

		id, err := fixedpoint.NumericToU64("market_id", raw)
		if err != nil {
			return marketv1.Snapshot{}, newStoreError("load market ids", err)
		}
		ids = append(ids, marketv1.MarketID(id))
	}
	if err := rows.Err(); err != nil {
		return marketv1.Snapshot{}, newStoreError("load market ids", err)
	}

	r.logger.Debug("Loaded market ids", logger.Field{
		Key:   "count",
		Value: len(ids),
	})

	return marketv1.NewSnapshot(ids...), nil
}

// ListMarkets lists every registered market with its coin metadata.
func (r *repository) ListMarkets(ctx context.Context) ([]marketv1.Market, error) {
	rows, err := r.db.Query(ctx, listMarketsQuery)
	if err != nil {
		return nil, newStoreError("list markets", err)
	}
	defer rows.Close()

	var markets []marketv1.Market
	for rows.Next() {
		var row MarketRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, newStoreError("list markets", err)
		}

		m, err := row.ToDomain()
		if err != nil {
			return nil, newStoreError("list markets", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("list markets", err)
	}

	return markets, nil
}

// ListRegistrationEvents lists the recorded market registration events.
func (r *repository) ListRegistrationEvents(ctx context.Context) ([]eventv1.MarketRegistrationEvent, error) {
	rows, err := r.db.Query(ctx, listRegistrationEventsQuery)
	if err != nil {
		return nil, newStoreError("list registration events", err)
	}
	defer rows.Close()

	var events []eventv1.MarketRegistrationEvent
	for rows.Next() {
		var row RegistrationRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, newStoreError("list registration events", err)
		}

		e, err := row.ToDomain()
		if err != nil {
			return nil, newStoreError("list registration events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("list registration events", err)
	}

	return events, nil
}
