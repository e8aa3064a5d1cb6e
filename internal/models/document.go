package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Kind identifies one of the supported document categories.
type Kind string

const (
	KindCollegeDue       Kind = "collegeDue"
	KindDeptDue          Kind = "deptDue"
	KindCourseForm       Kind = "courseForm"
	KindSchoolFeeReceipt Kind = "schoolFeeReceipt"
	KindSchoolFeeInvoice Kind = "schoolFeeInvoice"
	KindRemitaSchoolFee  Kind = "remitaSchoolFee"
)

// Kinds returns every supported kind in the canonical listing order.
func Kinds() []Kind {
	return []Kind{
		KindCollegeDue,
		KindDeptDue,
		KindCourseForm,
		KindSchoolFeeReceipt,
		KindSchoolFeeInvoice,
		KindRemitaSchoolFee,
	}
}

// ParseKind validates a raw kind value from a route parameter.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", raw)
}

// Status tracks the review lifecycle of a submission.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus validates a raw status value from a query parameter.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Level is the student level a submission belongs to.
type Level string

const (
	Level100 Level = "L100"
	Level200 Level = "L200"
	Level300 Level = "L300"
	Level400 Level = "L400"
	Level500 Level = "L500"
)

// ParseLevel validates a raw level value from a form field.
func ParseLevel(raw string) (Level, error) {
	switch l := Level(raw); l {
	case Level100, Level200, Level300, Level400, Level500:
		return l, nil
	}
	return "", fmt.Errorf("unknown student level %q", raw)
}

// FieldMap holds values extracted from document text. A nil value marks a
// field the extractor looked for but did not find.
type FieldMap map[string]*string

// Get returns the value for key, or the empty string when absent or nil.
func (m FieldMap) Get(key string) string {
	if v, ok := m[key]; ok && v != nil {
		return *v
	}
	return ""
}

// Set stores a found value under key.
func (m FieldMap) Set(key, value string) {
	m[key] = &value
}

// Submission is one uploaded document moving through the review workflow.
type Submission struct {
	ID              string         `db:"id" json:"id"`
	Kind            Kind           `db:"kind" json:"kind"`
	OwnerID         string         `db:"owner_id" json:"ownerId"`
	Level           Level          `db:"level" json:"level"`
	Status          Status         `db:"status" json:"status"`
	ExtractedFields types.JSONText `db:"extracted_fields" json:"extractedFields"`
	ArtifactRef     string         `db:"artifact_ref" json:"artifactRef"`
	FileName        string         `db:"file_name" json:"fileName"`
	ApprovedBy      *string        `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time     `db:"approved_at" json:"approvedAt,omitempty"`
	RejectedBy      *string        `db:"rejected_by" json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time     `db:"rejected_at" json:"rejectedAt,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejectionReason,omitempty"`
	UploadedAt      time.Time      `db:"uploaded_at" json:"uploadedAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// Fields decodes the stored JSONB payload into a FieldMap.
func (s *Submission) Fields() (FieldMap, error) {
	if len(s.ExtractedFields) == 0 {
		return FieldMap{}, nil
	}
	var m FieldMap
	if err := json.Unmarshal(s.ExtractedFields, &m); err != nil {
		return nil, fmt.Errorf("decode extracted fields: %w", err)
	}
	if m == nil {
		m = FieldMap{}
	}
	return m, nil
}

// SetFields encodes the FieldMap into the stored JSONB payload.
func (s *Submission) SetFields(m FieldMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode extracted fields: %w", err)
	}
	s.ExtractedFields = data
	return nil
}

// SubmissionFilter narrows listing queries.
type SubmissionFilter struct {
	Kind    Kind
	OwnerID string
	Level   Level
	Status  Status
}
