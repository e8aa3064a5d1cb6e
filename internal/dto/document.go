package dto

// SubmitDocumentRequest carries the form fields accompanying a document
// upload. The text field holds the machine-readable content of the document;
// the binary artifact arrives as the multipart file.
type SubmitDocumentRequest struct {
	Level string `form:"level" json:"level"`
	Text  string `form:"text" json:"text"`
}

// RejectDocumentRequest carries a rejection decision.
type RejectDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}
