package models

// WebhookPayload represents the overall structure of an event delivery from
// the WhatsApp Cloud API.
type WebhookPayload struct {
	Object string         `json:"object"` // "whatsapp_business_account"
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business-account entry in the payload.
type WebhookEntry struct {
	ID      string          `json:"id"` // business account ID
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps a single change notification.
type WebhookChange struct {
	Field string      `json:"field"` // e.g. "messages"
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the actual event details within a change.
type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         ValueMetadata     `json:"metadata"`
	Contacts         []WebhookContact  `json:"contacts,omitempty"`
	Messages         []IncomingMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate    `json:"statuses,omitempty"`
}

// ValueMetadata identifies the receiving business phone number.
type ValueMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// WebhookContact describes the sender of an inbound message.
type WebhookContact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

// IncomingMessage is one inbound message entry. Exactly one of the typed
// payload pointers is set, matching Type.
type IncomingMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"` // seconds since epoch, as a string
	Type      string       `json:"type"`
	Text      *TextContent `json:"text,omitempty"`
	Image     *MediaObject `json:"image,omitempty"`
	Video     *MediaObject `json:"video,omitempty"`
	Audio     *MediaObject `json:"audio,omitempty"`
	Document  *MediaObject `json:"document,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// MediaObject describes an attached media file.
type MediaObject struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"` // documents only
	Voice    bool   `json:"voice,omitempty"`    // audio only
}

// StatusUpdate is one delivery-status entry, keyed by the original message id.
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"` // sent/delivered/read/failed
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Media returns the media object matching the message type, or nil for text
// and unknown types.
func (m *IncomingMessage) Media() *MediaObject {
	switch m.Type {
	case MessageTypeImage:
		return m.Image
	case MessageTypeVideo:
		return m.Video
	case MessageTypeAudio:
		return m.Audio
	case MessageTypeDocument:
		return m.Document
	default:
		return nil
	}
}
