package extract

import (
	"regexp"
	"strings"

	"github.com/eduvault/eduvault-api/internal/models"
)

// schemas maps each document kind to its ordered field rules. The rule order
// fixes the key set of every extracted FieldMap.
var schemas = map[models.Kind][]rule{
	models.KindCollegeDue: {
		{"name", labelValue(`Payer's Name`, `[^\r\n]+`)},
		{"email", labelValue(`Payer's Email`, `[^\r\n]+`)},
		{"matricNumber", labelValue(`Matric No`, `[^\r\n]+`)},
		{"department", labelValue(`Department`, `[^\r\n]+`)},
		{"academicSession", labelValue(`Academic Session`, `[^\r\n]+`)},
		{"level", labelValue(`Level`, `[^\r\n]+`)},
		{"transactionReference", labelValue(`Transaction Reference`, `[^\r\n]+`)},
		{"status", labelValue(`Status`, `[^\r\n]+`)},
		{"amount", labelValue(`Total Amount`, `NGN[\d,]+`)},
		{"date", labelValue(`Date Paid`, `[^\r\n]+`)},
	},
	models.KindDeptDue: {
		{"name", labelValue(`Payer's Name`, `[^\r\n]+`)},
		{"email", labelValue(`Payer's Email`, `[^\r\n]+`)},
		{"matricNumber", labelValue(`Matric No`, `[^\r\n]+`)},
		{"academicSession", labelValue(`Academic Session`, `[^\r\n]+`)},
		{"level", labelValue(`Level`, `[^\r\n]+`)},
		{"transactionReference", labelValue(`Transaction Reference`, `[^\r\n]+`)},
		{"status", labelValue(`Status`, `[^\r\n]+`)},
		{"amount", labelValue(`Total Amount`, `NGN[\d,]+`)},
		{"date", labelValue(`Date Paid`, `[^\r\n]+`)},
	},
	models.KindCourseForm: {
		{"session", match(`(\d{4}/\d{4}\s+SESSION)`)},
		{"name", labelTight(`Name:`, `[A-Za-z ]+`)},
		{"programme", labelTight(`Programme:`, `[A-Za-z ]+`)},
		{"level", labelTight(`Level:`, `[0-9]+L`)},
		{"matricNumber", labelTight(`ID:`, `\d+`)},
	},
	models.KindSchoolFeeReceipt: {
		{"name", firstOf(
			match(`([A-Z][A-Za-z ]+)\s+Received from`),
			match(`Received from\s+([A-Za-z ]+)`),
		)},
		{"college", match(`(College[^\r\n]*?)Date:`)},
		{"department", labelTight(`Department:`, `[^\r\n]+`)},
		{"date", labelTight(`Date:`, `\d{2}/\d{2}/\d{4}`)},
		{"receiptNumber", firstOf(
			labelTight(`Receipt No:`, `\d+`),
			match(`(\d+)Receipt No:`),
		)},
		{"matricNumber", labelTight(`Matric. No.:`, `[^\r\n]+`)},
		{"level", labelTight(`Level:`, `[^\r\n]+`)},
		{"invoiceNumber", labelTight(`Invoice No.:`, `[^\r\n]+`)},
		{"bank", labelTight(`Bank:`, `[^\r\n]+`)},
		{"amount", labelTight(`TOTAL`, `[\d,]+\.\d{2}`)},
		{"description", match(`(Returning.*School Fees)`)},
	},
	models.KindSchoolFeeInvoice: {
		{"name", match(`([A-Z][A-Za-z ]+)\s+\d{11},`)},
		{"phone", match(`(\d{11}),`)},
		{"email", match(`([\w.%-]+@[\w.-]+\.[A-Za-z]{2,6})`)},
		{"amount", match(`Total:\s*N([\d,]+\.\d{2})`)},
		{"rrr", match(`REMITA RRR:\s*(\d+)`)},
		{"invoiceNumber", match(`REFERENCE/INVOICE NO.\s*([A-Z0-9/]+)`)},
		{"date", match(`(\d{1,2}\s+\w+\s+\d{4}\s+\d{2}:\d{2}:\d{2})`)},
	},
	models.KindRemitaSchoolFee: {
		{"rrr", fullLine(`\d{4}-\d{4}-\d{4,}`)},
		{"name", labelScan(`NAME`)},
		{"email", labelScan(`EMAIL`)},
		{"phoneNumber", labelScan(`PHONE NUMBER`)},
		{"amount", labelScan(`TOTAL AMOUNT`)},
		{"balanceDue", remitaBalanceDue},
		{"authorizationRef", remitaAuthorizationRef},
	},
}

// FieldKeys returns the fixed field keys for a kind, in schema order.
func FieldKeys(kind models.Kind) []string {
	schema := schemas[kind]
	keys := make([]string, len(schema))
	for i, r := range schema {
		keys[i] = r.field
	}
	return keys
}

// remitaBalanceDue reads the value one line below the BALANCE DUE label, or
// two lines below when a TOTAL AMOUNT line sits in between.
func remitaBalanceDue(d *document) *string {
	for i, raw := range d.lines {
		if !strings.Contains(strings.ToUpper(raw), "BALANCE DUE") {
			continue
		}
		if i+1 < len(d.lines) && strings.Contains(strings.ToUpper(d.lines[i+1]), "TOTAL AMOUNT") {
			if i+2 < len(d.lines) {
				return trimmed(d.lines[i+2])
			}
			return nil
		}
		if i+1 < len(d.lines) {
			return trimmed(d.lines[i+1])
		}
		return nil
	}
	return nil
}

var authDigits = regexp.MustCompile(`\d{6,}`)

// remitaAuthorizationRef takes the first 6+ digit run on a line mentioning
// the authorization reference or a card payment.
func remitaAuthorizationRef(d *document) *string {
	for _, raw := range d.lines {
		upper := strings.ToUpper(raw)
		if !strings.Contains(upper, "AUTHORIZATION REF") && !strings.Contains(upper, "CARD PAYMENT") {
			continue
		}
		if m := authDigits.FindString(raw); m != "" {
			return &m
		}
	}
	return nil
}
