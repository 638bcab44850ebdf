// Package docs registers the OpenAPI document served by gin-swagger.
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
        "/auth/nonce": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores a fresh nonce as the wallet's only pending challenge and returns it for signing",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Issue a wallet binding challenge",
                "parameters": [
                    {"description": "Wallet to bind", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.NonceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/bind-wallet": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Verifies the wallet's signature over its pending nonce and records the binding",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Bind a wallet to the caller",
                "parameters": [
                    {"description": "Wallet and base58 signature of the nonce", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BindWalletRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/verify": {
            "get": {
                "description": "Reads the token from the Authorization header or the web3auth_token cookie",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Verify the caller's identity token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/session": {
            "post": {
                "description": "Verifies the token and stores it in the httpOnly web3auth_token cookie",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Start a cookie session",
                "parameters": [
                    {"description": "Identity token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "End the cookie session",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            }
        },
        "/auth/wallet": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Read-only lookup. An explicit walletAddress is accepted for display and reported as non-authoritative unless the caller has bound it.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Resolve the caller's wallet address",
                "parameters": [
                    {"type": "string", "description": "Wallet address to look up", "name": "walletAddress", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "List the caller's binding events",
                "parameters": [
                    {"type": "integer", "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.AuditEntry"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.NonceRequest": {
            "type": "object",
            "properties": {"walletAddress": {"type": "string"}}
        },
        "handlers.BindWalletRequest": {
            "type": "object",
            "properties": {"walletAddress": {"type": "string"}, "signature": {"type": "string"}}
        },
        "handlers.SessionRequest": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "model.AuditEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "eventId": {"type": "string"},
                "kind": {"type": "string"},
                "walletAddress": {"type": "string"},
                "subject": {"type": "string"},
                "reason": {"type": "string"},
                "occurredAt": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "learn.sol Identity API",
	Description:      "Identity token verification and wallet binding",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
