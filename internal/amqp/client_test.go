package amqp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"finanzas/internal/notify"
)

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, maxBackoff, maxBackoff}
	for attempt, w := range want {
		if got := exponentialBackoff(attempt); got != w {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{amqp091.ErrClosed, true},
		{fmt.Errorf("publish transactions change: %w", amqp091.ErrClosed), true},
		{errors.New("dial AMQP: dial tcp 127.0.0.1:5672: connect: connection refused"), true},
		{errors.New("dial AMQP: read tcp 127.0.0.1:5672: i/o timeout"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("marshal message: unsupported value"), false},
	}
	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "finanzas_changes", queueName: "finanzas_changes"}

	if client.isCircuitOpen() {
		t.Fatal("circuit should start closed")
	}

	for i := 0; i < maxFailures-1; i++ {
		client.recordFailure()
	}
	if client.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures, want %d", maxFailures-1, maxFailures)
	}
	client.recordFailure()
	if !client.isCircuitOpen() || atomic.LoadInt32(&client.state) != StateOpen {
		t.Fatal("circuit should be open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() || atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("circuit should be half-open once the open timeout elapsed")
	}

	client.recordSuccess()
	if atomic.LoadInt32(&client.state) != StateClosed || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestClient_PublishChange_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "finanzas_changes", queueName: "finanzas_changes"}
	event := notify.NewEvent("transactions", notify.OpCreate, 123, "2024-05")

	t.Run("open circuit skips the broker", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		if err := client.PublishChange(context.Background(), event); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("PublishChange() error = %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)
		atomic.StoreInt64(&client.failureCount, 0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := client.PublishChange(ctx, event); !errors.Is(err, context.Canceled) {
			t.Errorf("PublishChange() error = %v, want context.Canceled", err)
		}
	})

	t.Run("notify swallows publish errors", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		client.Notify(context.Background(), event)
	})
}

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestClient_NotifyIsBoundedWhenBrokerIsSilent(t *testing.T) {
	client := &Client{
		url:           silentBroker(t),
		exchangeName:  "finanzas_changes",
		queueName:     "finanzas_changes",
		dialTimeout:   100 * time.Millisecond,
		notifyTimeout: 300 * time.Millisecond,
	}

	start := time.Now()
	client.Notify(context.Background(), notify.NewEvent("budgets", notify.OpUpdate, 7, "2024-05"))
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("Notify() took %v with a silent broker, want it bounded by the notify timeout", elapsed)
	}
	if atomic.LoadInt64(&client.failureCount) == 0 {
		t.Error("failed publish should be recorded by the circuit breaker")
	}
}

func TestNewChangeMessage(t *testing.T) {
	event := notify.NewEvent("budgets", notify.OpUpdate, 42, "2024-05")

	msg := NewChangeMessage(event)

	if msg.EventID != event.ID {
		t.Errorf("EventID = %v, want %v", msg.EventID, event.ID)
	}
	if msg.Collection != "budgets" || msg.Op != notify.OpUpdate || msg.RecordID != 42 || msg.Month != "2024-05" {
		t.Errorf("unexpected message %+v", msg)
	}
	if !msg.Timestamp.Equal(event.At) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, event.At)
	}
}

func TestNewChangeMessage_FillsMissingIdentity(t *testing.T) {
	msg := NewChangeMessage(notify.Event{Collection: "transactions", Op: notify.OpDelete, RecordID: 9})

	if msg.EventID == uuid.Nil {
		t.Error("EventID should be generated when the event has none")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent when the event has none")
	}
}

func TestChangeMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ChangeMessage{
		EventID:    uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Collection: "transactions",
		Op:         notify.OpCreate,
		RecordID:   12345,
		Timestamp:  timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if strings.Contains(string(jsonBytes), "month") {
		t.Errorf("empty month should be omitted, got %s", jsonBytes)
	}

	parsed, err := ChangeMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error = %v", err)
	}

	got := parsed.Event()
	if got.ID != msg.EventID || got.RecordID != 12345 || got.Op != notify.OpCreate {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !got.At.Equal(timestamp) {
		t.Errorf("Parsed timestamp = %v, want %v", got.At, timestamp)
	}
}

func TestChangeMessage_InvalidJSON(t *testing.T) {
	_, err := ChangeMessageFromJSON([]byte(`{"record_id": "not_a_number"}`))
	if err == nil {
		t.Error("ChangeMessageFromJSON() should fail with invalid JSON")
	}
}
