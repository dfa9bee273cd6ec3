package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Faculty Reallocation API",
        "description": "Proposes substitute instructors for the classes of an absent faculty member.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Reallocations", "description": "Substitute suggestions for leave requests"},
        {"name": "Observability", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "All dependencies reachable"},
                    "503": {"description": "At least one dependency unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/reallocations/generate": {
            "post": {
                "tags": ["Reallocations"],
                "summary": "Generate substitute suggestions for an absence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReallocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReallocateEnvelope"}},
                    "400": {"description": "Validation or persistence error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Leave request not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Leave request not approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave-requests/{id}/reallocations": {
            "get": {
                "tags": ["Reallocations"],
                "summary": "List reallocation suggestions of a leave request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/leave-requests/{id}/reallocations/export": {
            "get": {
                "tags": ["Reallocations"],
                "summary": "Download reallocation suggestions of a leave request",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ReallocateRequest": {
            "type": "object",
            "required": ["leaveRequestId", "facultyId", "startDate", "endDate"],
            "properties": {
                "leaveRequestId": {"type": "string"},
                "facultyId": {"type": "string"},
                "startDate": {"type": "string", "example": "2024-06-03"},
                "endDate": {"type": "string", "example": "2024-06-08"},
                "dryRun": {"type": "boolean"}
            }
        },
        "UnassignedOccurrence": {
            "type": "object",
            "properties": {
                "timetableSlotId": {"type": "string"},
                "date": {"type": "string"},
                "periodNumber": {"type": "integer"},
                "bestScore": {"type": "integer"}
            }
        },
        "ReallocateResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "skipped": {"type": "integer"},
                "teachingDays": {"type": "integer"},
                "message": {"type": "string"},
                "dryRun": {"type": "boolean"},
                "unassigned": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/UnassignedOccurrence"}
                },
                "suggestions": {
                    "type": "array",
                    "items": {"type": "object"}
                }
            }
        },
        "ReallocateEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ReallocateResponse"}
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
