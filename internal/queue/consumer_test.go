package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("", filepath.Join(dir, "logs"))

	for _, typ := range []string{EventBookingCreated, EventBookingCancelled} {
		body, _ := json.Marshal(BookingEvent{
			Type: typ, BookingID: 12, UserID: 3, PGID: 5, PGName: "Sunrise PG", PGArea: "Koramangala",
			Sharing: "double", Months: 2, Amount: 16000, Status: "reserved", OccurredAt: "2026-01-02T03:04:05Z",
		})
		if err := c.handleMessage(body); err != nil {
			t.Fatalf("handleMessage: %v", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "logs", "booking.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), raw)
	}
	if !strings.Contains(lines[0], "booking.created | booking_id=12") || !strings.Contains(lines[0], `pg="Sunrise PG"`) {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "booking.cancelled") {
		t.Fatalf("unexpected second line: %s", lines[1])
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := NewConsumer("", t.TempDir())
	if err := c.handleMessage([]byte("not json")); err == nil {
		t.Fatal("want error for invalid body")
	}
	if err := c.handleMessage([]byte(`{"type":""}`)); err == nil {
		t.Fatal("want error for empty event")
	}
}
