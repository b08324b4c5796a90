package models

import "time"

// Message is one directed chat entry between two identities. ID and
// CreatedAt are assigned by the store on insert.
type Message struct {
	ID          int64        `json:"id,string"`
	Text        *string      `json:"text"`
	Attachments []Attachment `json:"attachments"`
	SenderID    string       `json:"sender_id"`
	ReceiverID  string       `json:"receiver_id"`
	CreatedAt   time.Time    `json:"created_at"`
}
