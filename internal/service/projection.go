package service

import (
	"regexp"
	"strings"

	"github.com/eduvault/eduvault-api/internal/models"
)

// kindProjection describes how one document kind surfaces in cross-kind
// views: its category label, its archive folder, and which extracted fields
// identify the document.
type kindProjection struct {
	category string
	folder   string
	// distinguishingID names the field appended to archive entry names.
	// Empty means the name stands alone.
	distinguishingID string
}

// projections fixes the category order used by every cross-kind view.
var projectionOrder = []models.Kind{
	models.KindCollegeDue,
	models.KindSchoolFeeReceipt,
	models.KindDeptDue,
	models.KindCourseForm,
	models.KindRemitaSchoolFee,
	models.KindSchoolFeeInvoice,
}

var projections = map[models.Kind]kindProjection{
	models.KindCollegeDue:       {category: "College Due", folder: "CollegeDue", distinguishingID: "matricNumber"},
	models.KindSchoolFeeReceipt: {category: "School Fee Receipt", folder: "SchoolFeeReceipt", distinguishingID: "matricNumber"},
	models.KindDeptDue:          {category: "Department Due", folder: "DeptDue", distinguishingID: "matricNumber"},
	models.KindCourseForm:       {category: "Course Form", folder: "CourseForm", distinguishingID: "matricNumber"},
	models.KindRemitaSchoolFee:  {category: "Remita School Fee Receipt", folder: "RemitaSchoolFeeReceipt"},
	models.KindSchoolFeeInvoice: {category: "School Fee Invoice", folder: "SchoolFeeInvoice"},
}

// CategoryLabel returns the analytics label for a kind.
func CategoryLabel(kind models.Kind) string {
	return projections[kind].category
}

var whitespace = regexp.MustCompile(`\s+`)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// archiveEntryName builds the flat entry name for per-kind archives: the
// extracted name with whitespace collapsed to underscores, plus the
// distinguishing id when the kind carries one. Both parts are reduced to
// the safe alphanumeric/dash/underscore set; extracted text never reaches
// an archive path unsanitized.
func archiveEntryName(kind models.Kind, fields models.FieldMap) string {
	proj := projections[kind]
	name := fields.Get("name")
	if name == "" {
		name = "receipt"
	}
	safe := unsafeChars.ReplaceAllString(whitespace.ReplaceAllString(name, "_"), "_")
	if proj.distinguishingID != "" {
		id := unsafeChars.ReplaceAllString(fields.Get(proj.distinguishingID), "_")
		return safe + "-" + id + ".pdf"
	}
	return safe + ".pdf"
}

// crossArchiveEntryName places an artifact under its kind folder, naming it
// after the last path segment of its reference.
func crossArchiveEntryName(kind models.Kind, ref string, fallback string) string {
	proj := projections[kind]
	segment := ref
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		segment = ref[idx+1:]
	}
	segment = strings.TrimSuffix(segment, ".pdf")
	segment = unsafeChars.ReplaceAllString(segment, "_")
	if segment == "" {
		segment = fallback
	}
	return proj.folder + "/" + segment + ".pdf"
}
