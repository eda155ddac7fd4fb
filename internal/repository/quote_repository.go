package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/domain/repository"
	pkgch "QuoteLens/pkg/clickhouse"
	pkgkafka "QuoteLens/pkg/kafka"
	applogger "QuoteLens/pkg/logger"
)

// DailyClosesSchema creates the archive table. Re-archiving a day keeps the latest fetch.
func DailyClosesSchema(table string) []string {
	return []string{fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	symbol     LowCardinality(String),
	day        Date,
	close      Float64,
	fetched_at DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(fetched_at)
ORDER BY (symbol, day)`, table)}
}

// ClickHouseQuoteStorage implements Storage for ClickHouse.
type ClickHouseQuoteStorage struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseQuoteStorage creates ClickHouse storage over table.
func NewClickHouseQuoteStorage(ch *pkgch.Client, table string, l *applogger.Logger) *ClickHouseQuoteStorage {
	return &ClickHouseQuoteStorage{ch: ch, db: ch.DB(), table: table, l: l}
}

func (s *ClickHouseQuoteStorage) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, DailyClosesSchema(s.table))
}

func (s *ClickHouseQuoteStorage) Store(ctx context.Context, e *models.QuoteEvent) error {
	return s.StoreBatch(ctx, []*models.QuoteEvent{e})
}

// StoreBatch flattens events into one row per close and inserts them in chunks.
func (s *ClickHouseQuoteStorage) StoreBatch(ctx context.Context, events []*models.QuoteEvent) error {
	rows := archiveRows(events)
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	const chunkSize = 2000
	for from := 0; from < len(rows); from += chunkSize {
		to := from + chunkSize
		if to > len(rows) {
			to = len(rows)
		}

		values := make([]string, 0, to-from)
		args := make([]interface{}, 0, (to-from)*4)
		for _, r := range rows[from:to] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, r.Symbol, r.Date, r.Close, r.FetchedAt)
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, day, close, fetched_at) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.Int("rows", to-from),
				applogger.Error(err),
			)
			return fmt.Errorf("insert daily closes: %w", err)
		}
	}

	s.l.Debug("clickhouse insert ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// Query returns archived closes for symbol between from and to, newest first.
func (s *ClickHouseQuoteStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.ArchivedClose, error) {
	const qtpl = `
        SELECT symbol, day, argMax(close, fetched_at), max(fetched_at)
        FROM %s
        WHERE symbol = ? AND day >= ? AND day <= ?
        GROUP BY symbol, day
        ORDER BY day DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), symbol, from, to, limit)
	if err != nil {
		s.l.Error("clickhouse archive query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query daily closes: %w", err)
	}
	defer rows.Close()

	out := make([]models.ArchivedClose, 0, limit)
	for rows.Next() {
		var c models.ArchivedClose
		if err := rows.Scan(&c.Symbol, &c.Date, &c.Close, &c.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan daily close: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseQuoteStorage) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHouseQuoteStorage) Close() error {
	return nil // client lifecycle is owned by the caller
}

func archiveRows(events []*models.QuoteEvent) []models.ArchivedClose {
	var out []models.ArchivedClose
	for _, e := range events {
		if e == nil || e.Symbol == "" || e.IsFallback {
			continue
		}
		for _, p := range e.Prices {
			out = append(out, models.ArchivedClose{
				Symbol:    e.Symbol,
				Date:      p.Date,
				Close:     p.Price,
				FetchedAt: e.FetchedAt,
			})
		}
	}
	return out
}

// KafkaQuotePublisher implements Publisher for Kafka. Events are keyed by symbol.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaQuotePublisher creates Kafka publisher.
func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) *KafkaQuotePublisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) Publish(ctx context.Context, e *models.QuoteEvent) error {
	return p.PublishBatch(ctx, []*models.QuoteEvent{e})
}

func (p *KafkaQuotePublisher) PublishBatch(ctx context.Context, events []*models.QuoteEvent) error {
	msgs := make([]pkgkafka.Message, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:     []byte(e.Symbol),
			Value:   e,
			Headers: map[string]string{"period": e.Period},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaQuotePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var (
	_ repository.Storage   = (*ClickHouseQuoteStorage)(nil)
	_ repository.Publisher = (*KafkaQuotePublisher)(nil)
)
