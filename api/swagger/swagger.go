package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusGrid Timetable API",
        "description": "Weekly timetable generation, recommendation and conflict checking",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Generation, recommendations and export"},
        {"name": "Assignments", "description": "Stored assignment rows"},
        {"name": "Conflicts", "description": "Manual placement pre-validation"}
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
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate the weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Inconsistent scheduling input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/recommendations/{offeringId}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Ranked alternative placements for one offering unit",
                "parameters": [
                    {"name": "offeringId", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "query", "required": true, "type": "string", "enum": ["L", "T", "P"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/conflicts/check": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Validate a manual placement against hard constraints",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the stored timetable as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment"}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List stored assignments",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "offeringId", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete an unlocked assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Assignment is locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/lock": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Lock or unlock an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LockAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/apply": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Apply a chosen placement to an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyPlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Hard constraint violations", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "dryRun": {"type": "boolean"}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "offeringId": {"type": "string"},
                "kind": {"type": "string", "enum": ["L", "T", "P"]},
                "slotId": {"type": "string"},
                "day": {"type": "string"},
                "startMin": {"type": "integer"},
                "endMin": {"type": "integer"},
                "roomId": {"type": "string"},
                "locked": {"type": "boolean"}
            }
        },
        "GenerationWarning": {
            "type": "object",
            "properties": {
                "offeringId": {"type": "string"},
                "kind": {"type": "string"},
                "reason": {"type": "string"},
                "detail": {"type": "string"}
            }
        },
        "Alternative": {
            "type": "object",
            "properties": {
                "slotId": {"type": "string"},
                "day": {"type": "string"},
                "startMin": {"type": "integer"},
                "endMin": {"type": "integer"},
                "roomId": {"type": "string"},
                "roomName": {"type": "string"},
                "penaltyDelta": {"type": "integer"},
                "reasons": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ConflictCheckRequest": {
            "type": "object",
            "properties": {
                "offeringId": {"type": "string"},
                "kind": {"type": "string", "enum": ["L", "T", "P"]},
                "slotId": {"type": "string"},
                "roomId": {"type": "string"}
            },
            "required": ["offeringId", "kind", "slotId"]
        },
        "Violation": {
            "type": "object",
            "properties": {
                "constraint": {"type": "string"},
                "message": {"type": "string"},
                "conflictsWith": {"type": "string"}
            }
        },
        "LockAssignmentRequest": {
            "type": "object",
            "properties": {
                "locked": {"type": "boolean"}
            },
            "required": ["locked"]
        },
        "ApplyPlacementRequest": {
            "type": "object",
            "properties": {
                "slotId": {"type": "string"},
                "roomId": {"type": "string"}
            },
            "required": ["slotId"]
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
