package pipeline

// SubmitRequest is the direct submission body accepted on POST /
type SubmitRequest struct {
	UserID         string `json:"user_id"`
	FileDataBase64 string `json:"file_data_base64"`
}

// PushEnvelope is a queue push delivery that references a landed object
type PushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}

// PushMessage is the message part of a PushEnvelope
type PushMessage struct {
	Data        string            `json:"data"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// ObjectNotification is the base64 JSON carried in PushMessage.Data
type ObjectNotification struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// SubmitResponse is returned when a receipt is accepted
type SubmitResponse struct {
	Message    string `json:"message"`
	DeliveryID string `json:"delivery_id,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
}

// ErrorResponse is returned for every rejected or failed submission
type ErrorResponse struct {
	Error string `json:"error"`
	Code  Code   `json:"code,omitempty"`
}

// ExtractionAnnouncement is published to the extraction queue
type ExtractionAnnouncement struct {
	FilePath string `json:"file_path"`
	UserID   string `json:"user_id"`
}

// AcceptedMessage is the confirmation text for a successful submission
const AcceptedMessage = "Receipt accepted and processing started."

// Media types accepted by default
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWEBP = "image/webp"
	MimePDF  = "application/pdf"
)

// ProcessingPrefix is the key prefix of the processing area
const ProcessingPrefix = "processing-receipts/"
