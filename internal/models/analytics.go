package models

import "time"

// ApprovedDocument is one approved submission projected for the admin view.
type ApprovedDocument struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	Name             string    `json:"name"`
	DistinguishingID string    `json:"distinguishingId,omitempty"`
	UploadedBy       string    `json:"uploadedBy"`
	ApprovedBy       string    `json:"approvedBy"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// CategoryGroup is one analytics category with its approved documents, in
// fixed category order.
type CategoryGroup struct {
	Category string             `json:"category"`
	Receipts []ApprovedDocument `json:"receipts"`
}

// ApproverActivity counts approvals attributed to one reviewer.
type ApproverActivity struct {
	ApproverID  string `db:"approved_by" json:"approverId"`
	DisplayName string `json:"displayName"`
	Count       int    `db:"count" json:"count"`
}

// CountResult wraps scalar counter responses.
type CountResult struct {
	Count int `json:"count"`
}
