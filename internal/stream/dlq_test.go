package stream

import (
	"encoding/json"
	"testing"
)

func TestPersistentEntryMarshalsFields(t *testing.T) {
	entry := PersistentEntry{
		MessageID: "123-0",
		Data:      map[string]string{"userId": "user-1", "error_details": "boom"},
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var got PersistentEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if got.MessageID != entry.MessageID {
		t.Fatalf("expected message id %s, got %s", entry.MessageID, got.MessageID)
	}
	if got.Data["userId"] != "user-1" {
		t.Fatalf("expected userId user-1, got %s", got.Data["userId"])
	}
}

func TestDeadLetterStreamConstants(t *testing.T) {
	if DeadLetterStream == "" || PersistentFailuresKey == "" {
		t.Fatal("dlq stream/key constants must not be empty")
	}
	if DeadLetterStream == PersistentFailuresKey {
		t.Fatal("dead letter stream and persistent failures key must differ")
	}
}
