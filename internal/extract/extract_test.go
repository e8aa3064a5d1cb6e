package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/models"
)

const collegeDueText = `COLLEGE OF ENGINEERING
Payment Receipt
Payer's Name JOHN ADEBAYO OKAFOR
Payer's Email john.okafor@student.edu.ng
Matric No ENG/2021/044
Department Mechanical Engineering
Academic Session 2023/2024
Level 300
Transaction Reference TRX-99812-AC
Status Successful
Total Amount NGN12,500
Date Paid 2024-03-01`

func TestExtractCollegeDue(t *testing.T) {
	fields := Extract(models.KindCollegeDue, collegeDueText)

	assert.Equal(t, "NGN12,500", fields.Get("amount"))
	assert.Equal(t, "2024-03-01", fields.Get("date"))
	assert.Equal(t, "JOHN ADEBAYO OKAFOR", fields.Get("name"))
	assert.Equal(t, "ENG/2021/044", fields.Get("matricNumber"))
	assert.Equal(t, "Mechanical Engineering", fields.Get("department"))
	assert.Equal(t, "2023/2024", fields.Get("academicSession"))
	assert.Equal(t, "TRX-99812-AC", fields.Get("transactionReference"))
	assert.Equal(t, "Successful", fields.Get("status"))
}

func TestExtractDeptDueOmitsDepartmentKey(t *testing.T) {
	fields := Extract(models.KindDeptDue, collegeDueText)

	assert.Equal(t, "NGN12,500", fields.Get("amount"))
	_, hasDepartment := fields["department"]
	assert.False(t, hasDepartment)
}

func TestExtractMissingFieldsAreNil(t *testing.T) {
	fields := Extract(models.KindCollegeDue, "nothing useful in here")

	for _, key := range FieldKeys(models.KindCollegeDue) {
		value, ok := fields[key]
		require.True(t, ok, "key %s should be present", key)
		assert.Nil(t, value)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	first := Extract(models.KindCollegeDue, collegeDueText)
	second := Extract(models.KindCollegeDue, collegeDueText)
	assert.Equal(t, first, second)
}

func TestExtractNeverPanicsOnMalformedInput(t *testing.T) {
	for _, kind := range models.Kinds() {
		assert.NotPanics(t, func() {
			Extract(kind, "")
			Extract(kind, "\r\n\r\n\r\n")
			Extract(kind, "Total Amount")
		})
	}
}

func TestExtractCourseForm(t *testing.T) {
	text := `FEDERAL UNIVERSITY OF TECHNOLOGY
2023/2024 SESSION COURSE REGISTRATION
Name: Amina Yusuf
Programme: Computer Science
Level: 200L
ID: 20210331`

	fields := Extract(models.KindCourseForm, text)

	assert.Equal(t, "2023/2024 SESSION", fields.Get("session"))
	assert.Equal(t, "Amina Yusuf", fields.Get("name"))
	assert.Equal(t, "Computer Science", fields.Get("programme"))
	assert.Equal(t, "200L", fields.Get("level"))
	assert.Equal(t, "20210331", fields.Get("matricNumber"))
}

func TestExtractSchoolFeeReceipt(t *testing.T) {
	text := `OFFICIAL RECEIPT
CHIOMA BLESSING EZE Received from
College of Science Date: 12/01/2024
Department: Microbiology
Receipt No: 448812
Matric. No.: SCI/2022/101
Level: 100
Invoice No.: INV/2024/0097
Bank: First Bank
TOTAL 45,250.00
Returning Student School Fees`

	fields := Extract(models.KindSchoolFeeReceipt, text)

	assert.Equal(t, "CHIOMA BLESSING EZE", fields.Get("name"))
	assert.Equal(t, "College of Science", fields.Get("college"))
	assert.Equal(t, "Microbiology", fields.Get("department"))
	assert.Equal(t, "12/01/2024", fields.Get("date"))
	assert.Equal(t, "448812", fields.Get("receiptNumber"))
	assert.Equal(t, "SCI/2022/101", fields.Get("matricNumber"))
	assert.Equal(t, "INV/2024/0097", fields.Get("invoiceNumber"))
	assert.Equal(t, "First Bank", fields.Get("bank"))
	assert.Equal(t, "45,250.00", fields.Get("amount"))
	assert.Equal(t, "Returning Student School Fees", fields.Get("description"))
}

func TestExtractSchoolFeeReceiptNameFallback(t *testing.T) {
	text := `Received from Chioma Eze
Date: 12/01/2024`

	fields := Extract(models.KindSchoolFeeReceipt, text)
	assert.Equal(t, "Chioma Eze", fields.Get("name"))
}

func TestExtractSchoolFeeInvoice(t *testing.T) {
	text := `PAYMENT INVOICE
MUSA IBRAHIM BELLO 08031234567, musa.bello@student.edu.ng
REMITA RRR: 280519876543
REFERENCE/INVOICE NO. INV/FEES/2024/112
Total: N52,300.00
Generated 14 March 2024 09:15:42`

	fields := Extract(models.KindSchoolFeeInvoice, text)

	assert.Equal(t, "MUSA IBRAHIM BELLO", fields.Get("name"))
	assert.Equal(t, "08031234567", fields.Get("phone"))
	assert.Equal(t, "musa.bello@student.edu.ng", fields.Get("email"))
	assert.Equal(t, "52,300.00", fields.Get("amount"))
	assert.Equal(t, "280519876543", fields.Get("rrr"))
	assert.Equal(t, "INV/FEES/2024/112", fields.Get("invoiceNumber"))
	assert.Equal(t, "14 March 2024 09:15:42", fields.Get("date"))
}

func TestExtractRemitaSameLineValue(t *testing.T) {
	text := `REMITA PAYMENT RECEIPT
2805-1987-6543
NAME BELLO MUSA IBRAHIM
EMAIL musa.bello@student.edu.ng
PHONE NUMBER 08031234567
TOTAL AMOUNT N52,300.00
BALANCE DUE
N0.00
AUTHORIZATION REF 883920114 CARD PAYMENT`

	fields := Extract(models.KindRemitaSchoolFee, text)

	assert.Equal(t, "2805-1987-6543", fields.Get("rrr"))
	assert.Equal(t, "BELLO MUSA IBRAHIM", fields.Get("name"))
	assert.Equal(t, "musa.bello@student.edu.ng", fields.Get("email"))
	assert.Equal(t, "08031234567", fields.Get("phoneNumber"))
	assert.Equal(t, "N52,300.00", fields.Get("amount"))
	assert.Equal(t, "N0.00", fields.Get("balanceDue"))
	assert.Equal(t, "883920114", fields.Get("authorizationRef"))
}

func TestExtractRemitaValueOnFollowingLine(t *testing.T) {
	text := `NAME
BELLO MUSA IBRAHIM
BALANCE DUE
TOTAL AMOUNT N52,300.00
N0.00`

	fields := Extract(models.KindRemitaSchoolFee, text)

	assert.Equal(t, "BELLO MUSA IBRAHIM", fields.Get("name"))
	// TOTAL AMOUNT intervenes, so the balance sits two lines below the label.
	assert.Equal(t, "N0.00", fields.Get("balanceDue"))
}
