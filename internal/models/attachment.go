package models

// Attachment is the stored metadata of an uploaded file. Name is only used
// to derive the object extension; Size is passed through as declared.
type Attachment struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	IsImage bool   `json:"isImage"`
	Size    int64  `json:"size"`
}

// AttachmentUpload is an inbound attachment carrying its payload as a data URI.
type AttachmentUpload struct {
	Data    string `json:"data"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	IsImage bool   `json:"isImage"`
	Size    int64  `json:"size"`
}
