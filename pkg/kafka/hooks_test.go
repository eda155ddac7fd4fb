package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestExtractTraceID(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "other", Value: []byte("x")}, {Key: TraceIDHeader, Value: []byte("abc")}}}
	if got := ExtractTraceID(msg); got != "abc" {
		t.Fatalf("trace id = %q", got)
	}
	if got := ExtractTraceID(kafka.Message{}); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
}

func TestContextHelpers(t *testing.T) {
	now := time.Now()
	ctx := WithTraceID(WithStartTime(context.Background(), now), "t-1")
	if got, ok := StartTime(ctx); !ok || !got.Equal(now) {
		t.Fatalf("start time not stored")
	}
	if TraceID(ctx) != "t-1" {
		t.Fatalf("trace id not stored")
	}
	if WithTraceID(context.Background(), "") != context.Background() {
		t.Fatalf("empty trace id must not wrap the context")
	}
}

func TestHookFuncsNilSafe(t *testing.T) {
	var h HookFuncs
	ctx, _, data, err := h.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("d"))
	if err != nil || string(data) != "d" || ctx == nil {
		t.Fatalf("nil Before must pass through")
	}
	h.AfterHandle(ctx, "t", kafka.Message{}, nil, nil)
	h.OnError(ctx, "t", kafka.Message{}, nil, nil)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(100*time.Millisecond, time.Second, attempt)
		if d <= 0 || d > time.Second {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestBuildMessagesPropagatesTraceID(t *testing.T) {
	at := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	ctx := WithTraceID(context.Background(), "trace-1")

	msgs, size, err := buildMessages(ctx, "quotes", []Message{
		{Key: []byte("AAPL"), Value: map[string]int{"n": 1}},
		{Key: []byte("MSFT"), Value: "raw", Headers: map[string]string{TraceIDHeader: "own"}},
	}, at)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(msgs) != 2 || size != int64(len(`{"n":1}`)+len("raw")) {
		t.Fatalf("unexpected messages %d size %d", len(msgs), size)
	}
	if got := ExtractTraceID(msgs[0]); got != "trace-1" {
		t.Fatalf("expected context trace id, got %q", got)
	}
	if got := ExtractTraceID(msgs[1]); got != "own" {
		t.Fatalf("explicit header must win, got %q", got)
	}
	if msgs[0].Topic != "quotes" || !msgs[0].Time.Equal(at) {
		t.Fatalf("topic/time not set: %+v", msgs[0])
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("bogus") != kafka.Snappy {
		t.Fatalf("unexpected codec mapping")
	}
}
