package heartbeat

import (
	"strings"
	"testing"
	"time"

	"github.com/gadomski/atlas/internal/sbd"
)

const otherIMEI = "300234063909201"

func TestSource_Empty(t *testing.T) {
	source := NewSource(sbd.NewMemoryStore())
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 0 {
		t.Errorf("got %d heartbeats, want 0", len(heartbeats))
	}
}

func TestSource_OneRecord(t *testing.T) {
	store := sbd.NewMemoryStore()
	store.Add(oneV1Message())
	source := NewSource(store)
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 1 {
		t.Fatalf("got %d heartbeats, want 1", len(heartbeats))
	}
	if !heartbeats[0].StartTime.Equal(testBase) {
		t.Errorf("StartTime: got %v, want %v", heartbeats[0].StartTime, testBase)
	}
}

func TestSource_SplitRecordReassembled(t *testing.T) {
	store := sbd.NewMemoryStore()
	// Add out of order; the source sorts per modem before extraction.
	messages := twoV2Messages()
	store.Add(messages[1])
	store.Add(messages[0])
	source := NewSource(store)
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 1 {
		t.Fatalf("got %d heartbeats, want 1", len(heartbeats))
	}
}

func TestSource_AllowList(t *testing.T) {
	store := sbd.NewMemoryStore()
	store.Add(oneV1Message())
	store.Add(sbd.NewMessage(otherIMEI, testBase.Add(time.Second), []byte(v1Payload())))

	source := NewSource(store)
	source.Allow(otherIMEI)
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 1 {
		t.Fatalf("got %d heartbeats, want 1", len(heartbeats))
	}
	if !heartbeats[0].StartTime.Equal(testBase.Add(time.Second)) {
		t.Errorf("allow-list admitted the wrong modem: StartTime %v",
			heartbeats[0].StartTime)
	}
}

func TestSource_MergeSortedAcrossModems(t *testing.T) {
	store := sbd.NewMemoryStore()
	// The other modem's record is older; the merged result must still be
	// ascending by start time.
	store.Add(oneV1Message())
	store.Add(sbd.NewMessage(otherIMEI, testBase.Add(-time.Hour), []byte(v1Payload())))

	source := NewSource(store)
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 2 {
		t.Fatalf("got %d heartbeats, want 2", len(heartbeats))
	}
	if heartbeats[1].StartTime.Before(heartbeats[0].StartTime) {
		t.Errorf("heartbeats not sorted: %v before %v",
			heartbeats[0].StartTime, heartbeats[1].StartTime)
	}
}

func TestSource_SkipsUnparseableRecord(t *testing.T) {
	store := sbd.NewMemoryStore()
	// A complete record whose body does not parse is skipped, not fatal.
	fields := strings.Split(v1Payload(), ",")
	fields[1] = "garbage"
	store.Add(message(0, strings.Join(fields, ",")))
	store.Add(sbd.NewMessage(otherIMEI, testBase.Add(time.Second), []byte(v1Payload())))

	source := NewSource(store)
	heartbeats, err := source.Heartbeats()
	if err != nil {
		t.Fatalf("Heartbeats: %v", err)
	}
	if len(heartbeats) != 1 {
		t.Fatalf("got %d heartbeats, want 1", len(heartbeats))
	}
}
