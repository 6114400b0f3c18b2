package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hiraya Scholarship API",
        "description": "Backend for the Hiraya Foundation scholarship application portal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Accounts and tokens"},
        {"name": "Applications", "description": "Applicant draft and submission flow"},
        {"name": "Documents", "description": "Supporting document uploads"},
        {"name": "Admin", "description": "Staff review and management"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register applicant account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate applicant",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/applications/draft": {
            "get": {
                "tags": ["Applications"],
                "summary": "Get draft application",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No draft"}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Save draft application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing required fields"}
                }
            }
        },
        "/applications/{id}": {
            "get": {
                "tags": ["Applications"],
                "summary": "Get own application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Applications"],
                "summary": "Delete draft application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/applications/{id}/submit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not an open draft"}
                }
            }
        },
        "/applications/{id}/progress": {
            "get": {
                "tags": ["Applications"],
                "summary": "Application progress",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{id}/timeline": {
            "get": {
                "tags": ["Applications"],
                "summary": "Application timeline",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{id}/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Upload document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "document_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid type, size or format"}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download document",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Admin"],
                "summary": "Staff dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/admin/applications": {
            "get": {
                "tags": ["Admin"],
                "summary": "List applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/applications/{id}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/admin/applications/{id}/status": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update application status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusUpdateRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Draft applications cannot change status"}
                }
            }
        },
        "/admin/applications/{id}/timeline": {
            "post": {
                "tags": ["Admin"],
                "summary": "Comment on application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/documents/{id}/verify": {
            "post": {
                "tags": ["Admin"],
                "summary": "Verify or reject document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Rejection requires a reason"}
                }
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "List user accounts",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/users/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update user account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UserStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/export/applications": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export applications",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            },
            "required": ["email", "password", "first_name", "last_name"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["old_password", "new_password"]
        },
        "StatusUpdateRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["status"]
        },
        "CommentRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"}
            },
            "required": ["description"]
        },
        "VerifyRequest": {
            "type": "object",
            "properties": {
                "accept": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "UserStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            },
            "required": ["status"]
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
