package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OCC Admission Guidance API",
        "description": "Guidance counselor backend for exam registration and personality assessment administration",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Evaluators", "description": "Evaluator account management"},
        {"name": "Schedules", "description": "Closed exam schedule browser"},
        {"name": "RegistrationSettings", "description": "Registration window and exam date selection"},
        {"name": "Archive", "description": "Archived registration browser and reports"},
        {"name": "PersonalityQuestions", "description": "Personality assessment question bank"},
        {"name": "ExamQuestions", "description": "Entrance exam question bank"},
        {"name": "RecommendationRules", "description": "Course recommendation rules"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a staff account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/evaluators": {
            "get": {
                "tags": ["Evaluators"],
                "summary": "List evaluator accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evaluators"],
                "summary": "Create an evaluator account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEvaluatorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username or email taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/evaluators/{id}": {
            "delete": {
                "tags": ["Evaluators"],
                "summary": "Delete an evaluator account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/guidance/schedules/closed": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List closed exam schedules grouped by year and month",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "session", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/registration-settings": {
            "get": {
                "tags": ["RegistrationSettings"],
                "summary": "Registration window, month calendar grid and selected exam dates",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["RegistrationSettings"],
                "summary": "Update registration window and exam dates",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Weekend, out-of-window or locked date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/registration-settings/exam-dates/toggle": {
            "post": {
                "tags": ["RegistrationSettings"],
                "summary": "Toggle a single exam date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/registration-settings/exam-dates/bulk-select": {
            "post": {
                "tags": ["RegistrationSettings"],
                "summary": "Bulk select exam dates (all weekdays, weekdays only, or clear)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkSelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/archived-registrations": {
            "get": {
                "tags": ["Archive"],
                "summary": "List archived registrations grouped by year, month and session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/archived-registrations/{id}/unarchive": {
            "post": {
                "tags": ["Archive"],
                "summary": "Restore an archived registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Restored"}
                }
            }
        },
        "/guidance/archived-registrations/bulk-unarchive": {
            "post": {
                "tags": ["Archive"],
                "summary": "Restore multiple archived registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkUnarchiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/archived-registrations/reports": {
            "post": {
                "tags": ["Archive"],
                "summary": "Request an async archive report export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/archived-registrations/reports/download": {
            "get": {
                "tags": ["Archive"],
                "summary": "Download a rendered archive report via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Report not ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/personality-questions": {
            "get": {
                "tags": ["PersonalityQuestions"],
                "summary": "List personality questions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["PersonalityQuestions"],
                "summary": "Create a personality question",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/personality-questions/import": {
            "post": {
                "tags": ["PersonalityQuestions"],
                "summary": "Bulk import personality questions from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/exam-questions": {
            "get": {
                "tags": ["ExamQuestions"],
                "summary": "List exam questions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ExamQuestions"],
                "summary": "Create an exam question",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/exam-questions/import": {
            "post": {
                "tags": ["ExamQuestions"],
                "summary": "Bulk import exam questions from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/exam-questions/{id}/locate": {
            "get": {
                "tags": ["ExamQuestions"],
                "summary": "Find the page containing a question under the current filter",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/exam-questions/bulk-archive": {
            "post": {
                "tags": ["ExamQuestions"],
                "summary": "Archive multiple exam questions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/recommendation-rules": {
            "get": {
                "tags": ["RecommendationRules"],
                "summary": "List rules grouped by personality type and score range",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "personality_type", "in": "query", "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["RecommendationRules"],
                "summary": "Create recommendation rules",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/recommendation-rules/compatible-courses": {
            "get": {
                "tags": ["RecommendationRules"],
                "summary": "Courses whose passing rate admits a minimum score",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "min_score", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/guidance/generate-all-rules": {
            "post": {
                "tags": ["RecommendationRules"],
                "summary": "Generate default rules for every personality type",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "academic_year", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Created counts and per-type delta", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateEvaluatorRequest": {
            "type": "object",
            "required": ["full_name", "username", "email", "password", "password_confirmation"],
            "properties": {
                "full_name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "password_confirmation": {"type": "string"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "registration_start": {"type": "string"},
                "registration_end": {"type": "string"},
                "exam_dates": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ToggleDateRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string"}
            }
        },
        "BulkSelectRequest": {
            "type": "object",
            "required": ["selection"],
            "properties": {
                "selection": {"type": "string", "enum": ["all", "weekdays", "clear"]}
            }
        },
        "BulkUnarchiveRequest": {
            "type": "object",
            "required": ["registration_ids"],
            "properties": {
                "registration_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "last_page": {"type": "integer"},
                "from": {"type": "integer"},
                "to": {"type": "integer"}
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
