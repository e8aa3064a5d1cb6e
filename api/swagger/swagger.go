package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduVault API",
        "description": "Student payment and registration document vault",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Documents", "description": "Document upload, listing and per-kind export"},
        {"name": "Reviews", "description": "Approve/reject decisions on pending submissions"},
        {"name": "Analytics", "description": "Admin dashboard counters and downloads"},
        {"name": "Notifications", "description": "Review outcome notifications"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/documents/{kind}": {
            "get": {
                "tags": ["Documents"],
                "summary": "List submissions of a kind",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a document for review",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "level", "in": "formData", "required": true, "type": "string"},
                    {"name": "text", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "An active submission already exists for the level"}
                }
            }
        },
        "/documents/{kind}/mine": {
            "get": {
                "tags": ["Documents"],
                "summary": "List the caller's submissions of a kind",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "level", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{kind}/mine/latest/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download the caller's most recent submission artifact",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF artifact"}
                }
            }
        },
        "/documents/{kind}/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a ZIP of all approved artifacts of a kind",
                "produces": ["application/zip"],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "ZIP archive"},
                    "404": {"description": "No approved submissions to export"}
                }
            }
        },
        "/reviews/{kind}/{id}/approve": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Approve a pending submission",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Submission is no longer pending"}
                }
            }
        },
        "/reviews/{kind}/{id}/reject": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Reject a pending submission with a reason",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Submission is no longer pending"}
                }
            }
        },
        "/analytics/approved-receipts": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Approved submissions grouped by category",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No approved receipts in any category"}
                }
            }
        },
        "/analytics/approved-receipts/count": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Total approved count",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/approved/this-week": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Approvals in the current week",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/uploads/this-month": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Uploads in the current month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/students": {
            "get": {
                "tags": ["Analytics"],
                "summary": "List student accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/students/new-this-month": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Student accounts created this month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/approvers": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Approver leaderboard across all kinds",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/staff/activity-this-month": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Approvals per reviewer this month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/download/approved-receipts": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Download a ZIP of approved artifacts across all kinds",
                "produces": ["application/zip"],
                "responses": {
                    "200": {"description": "ZIP archive"},
                    "404": {"description": "No approved receipts in any category"}
                }
            }
        },
        "/analytics/reports/approved": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Download the approved listing as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark one notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/read-all": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark all of the caller's notifications as read",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Submission": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "owner_id": {"type": "string"},
                "level": {"type": "string"},
                "status": {"type": "string"},
                "extracted_fields": {"type": "object"},
                "file_name": {"type": "string"},
                "approved_by": {"type": "string"},
                "approved_at": {"type": "string"},
                "rejected_by": {"type": "string"},
                "rejected_at": {"type": "string"},
                "rejection_reason": {"type": "string"},
                "uploaded_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "RejectDocumentRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "CategoryGroup": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "receipts": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ApprovedDocument"}
                }
            }
        },
        "ApprovedDocument": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "file_name": {"type": "string"},
                "name": {"type": "string"},
                "distinguishing_id": {"type": "string"},
                "uploaded_by": {"type": "string"},
                "approved_by": {"type": "string"},
                "uploaded_at": {"type": "string"}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "read": {"type": "boolean"},
                "read_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
