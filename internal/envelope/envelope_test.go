package envelope

import "testing"

func TestMessageFieldsRoundTrip(t *testing.T) {
	msg := Message{
		UserID:      "user-1",
		ChatID:      "chat-1",
		Timestamp:   "1700000000",
		Body:        "hello",
		MediaKey:    "media/abc.ogg",
		Transcribed: "false",
	}

	got := FromFields(msg.Fields())
	if got != msg {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestDocumentEnvelopeFieldsRoundTrip(t *testing.T) {
	doc := DocumentEnvelope{
		DocumentID:  "doc-1",
		UserID:      "user-1",
		StoragePath: "user-1/doc.pdf",
		Text:        "",
	}

	got := DocumentFromFields(doc.Fields())
	if got != doc {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, doc)
	}
}
