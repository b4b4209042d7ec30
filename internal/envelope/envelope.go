// Package envelope defines the wire shapes carried on the Redis Streams
// pipeline: flat string maps in, typed Go structs out.
package envelope

// Message is the conversational Message Envelope that flows from ingress
// through transcription to the router.
type Message struct {
	UserID      string
	ChatID      string
	Timestamp   string
	Body        string
	MediaKey    string
	Transcribed string
}

func (m Message) Fields() map[string]string {
	return map[string]string{
		"userId":      m.UserID,
		"chatId":      m.ChatID,
		"timestamp":   m.Timestamp,
		"body":        m.Body,
		"mediaKey":    m.MediaKey,
		"transcribed": m.Transcribed,
	}
}

func FromFields(f map[string]string) Message {
	return Message{
		UserID:      f["userId"],
		ChatID:      f["chatId"],
		Timestamp:   f["timestamp"],
		Body:        f["body"],
		MediaKey:    f["mediaKey"],
		Transcribed: f["transcribed"],
	}
}

// DocumentEnvelope carries a freshly uploaded document to the embedding
// worker. Text is set when the caller already extracted plain text; when
// empty the worker fetches StoragePath from blob storage and extracts it.
type DocumentEnvelope struct {
	DocumentID  string
	UserID      string
	StoragePath string
	Text        string
}

func (d DocumentEnvelope) Fields() map[string]string {
	return map[string]string{
		"document_id":  d.DocumentID,
		"user_id":      d.UserID,
		"storage_path": d.StoragePath,
		"text":         d.Text,
	}
}

func DocumentFromFields(f map[string]string) DocumentEnvelope {
	return DocumentEnvelope{
		DocumentID:  f["document_id"],
		UserID:      f["user_id"],
		StoragePath: f["storage_path"],
		Text:        f["text"],
	}
}
