// Package docs holds the OpenAPI description of the portal session API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/portal/api/session": {
            "get": {
                "description": "Returns the session state and the launcher view. While the first identity check is still running the view kind is \"checking\".",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "parameters": [
                    {"type": "string", "description": "Path of the view the caller is on", "name": "X-Portal-Location", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/portal/api/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Log in",
                "parameters": [
                    {"type": "string", "description": "Path of the view the caller is on", "name": "X-Portal-Location", "in": "header"},
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.LoginCredentials"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/portal/api/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Log out",
                "parameters": [
                    {"type": "string", "description": "Path of the view the caller is on", "name": "X-Portal-Location", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/portal/api/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Register an account",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RegisterCredentials"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Destination": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "name": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "domain.Identity": {
            "type": "object",
            "properties": {
                "account_role": {"type": "string", "enum": ["admin", "staff", "agent"]},
                "address": {"type": "string"},
                "agency_id": {"type": "integer"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "id": {"type": "integer"},
                "phone_number": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "domain.LoginCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "domain.RegisterCredentials": {
            "type": "object",
            "required": ["confirm_password", "email", "full_name", "password", "username"],
            "properties": {
                "account_role": {"type": "string", "enum": ["admin", "staff", "agent"]},
                "address": {"type": "string"},
                "confirm_password": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "phone_number": {"type": "string"},
                "username": {"type": "string", "minLength": 3}
            }
        },
        "domain.View": {
            "type": "object",
            "properties": {
                "destinations": {"type": "array", "items": {"$ref": "#/definitions/domain.Destination"}},
                "display_name": {"type": "string"},
                "identity": {"$ref": "#/definitions/domain.Identity"},
                "kind": {"type": "string", "enum": ["checking", "unauthenticated", "authenticated"]},
                "login_url": {"type": "string"},
                "logout_url": {"type": "string"},
                "no_access": {"type": "boolean"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "violations": {"type": "array", "items": {"$ref": "#/definitions/validation.Violation"}}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.registerResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.Identity"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "identity": {"$ref": "#/definitions/domain.Identity"},
                "loading": {"type": "boolean"},
                "session": {"type": "integer"},
                "view": {"$ref": "#/definitions/domain.View"}
            }
        },
        "validation.Violation": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "rule": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agency Portal API",
	Description:      "Session API of the agency portal: log in against the auth service and list the applications the account may open.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
