package repository

import (
	"strings"
	"testing"
	"time"

	"QuoteLens/internal/domain/models"
)

func TestArchiveRowsFlattensEvents(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fetched := d.Add(20 * time.Hour)
	events := []*models.QuoteEvent{
		{Symbol: "AAPL", Prices: models.PriceSeries{{Date: d, Price: 1}, {Date: d.AddDate(0, 0, 1), Price: 2}}, FetchedAt: fetched},
		nil,
		{Symbol: "TSLA", IsFallback: true, Prices: models.PriceSeries{{Date: d, Price: 9}}},
		{Symbol: "", Prices: models.PriceSeries{{Date: d, Price: 9}}},
	}

	rows := archiveRows(events)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Symbol != "AAPL" || rows[1].Close != 2 || !rows[1].FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestDailyClosesSchemaUsesTable(t *testing.T) {
	stmts := DailyClosesSchema("archive.daily")
	if len(stmts) != 1 {
		t.Fatalf("expected one statement")
	}
	if want := "CREATE TABLE IF NOT EXISTS archive.daily"; !strings.Contains(stmts[0], want) {
		t.Fatalf("schema does not target table: %s", stmts[0])
	}
}
