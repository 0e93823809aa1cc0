// Package docs registers the OpenAPI description of the Destrone API with swag.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.rootResponse"}}
                }
            }
        },
        "/auth/request_otp": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request an OTP",
                "parameters": [
                    {"description": "Mobile number", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.requestOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.requestOTPResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/verify_otp": {
            "post": {
                "description": "Provisions the profile for the role on first login (name required).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify an OTP",
                "parameters": [
                    {"description": "Code, role and optional profile data", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.verifyOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.verifyOTPResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"type": "string", "description": "Pending, Accepted or Rejected", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Booking"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Book a drone",
                "parameters": [
                    {"description": "Booking details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Booking"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/bookings/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Update booking status",
                "parameters": [
                    {"type": "integer", "description": "Booking id", "name": "id", "in": "path", "required": true},
                    {"description": "Pending, Accepted or Rejected", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/drones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["drones"],
                "summary": "List drones",
                "parameters": [
                    {"type": "number", "description": "Origin latitude", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Origin longitude", "name": "lon", "in": "query"},
                    {"type": "number", "description": "Radius around the origin", "name": "max_dist_km", "in": "query"},
                    {"type": "number", "description": "Minimum price per hour", "name": "min_price", "in": "query"},
                    {"type": "number", "description": "Maximum price per hour", "name": "max_price", "in": "query"},
                    {"type": "string", "description": "price or distance", "name": "sort_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Drone"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drones"],
                "summary": "Register a drone",
                "parameters": [
                    {"description": "Drone details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createDroneRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Drone"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/drones/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["drones"],
                "summary": "Get a drone",
                "parameters": [
                    {"type": "integer", "description": "Drone id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Drone"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/drones/{id}/availability": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["drones"],
                "summary": "Update drone availability",
                "parameters": [
                    {"type": "integer", "description": "Drone id", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.availabilityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        },
        "/owners": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "List owners",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Profile"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Booking": {
            "type": "object",
            "properties": {
                "booking_date": {"type": "string"},
                "drone_id": {"type": "integer"},
                "duration_hrs": {"type": "integer"},
                "farmer_mobile": {"type": "string"},
                "farmer_name": {"type": "string"},
                "id": {"type": "integer"},
                "status": {"type": "string", "enum": ["Pending", "Accepted", "Rejected"]}
            }
        },
        "domain.Drone": {
            "type": "object",
            "properties": {
                "battery_mah": {"type": "number"},
                "capacity_liters": {"type": "number"},
                "id": {"type": "integer"},
                "image_url": {"type": "string"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "name": {"type": "string"},
                "owner_id": {"type": "integer"},
                "price_per_hr": {"type": "number"},
                "status": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "domain.Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "mobile": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handler.createBookingRequest": {
            "type": "object",
            "required": ["drone_id"],
            "properties": {
                "drone_id": {"type": "integer"},
                "duration_hrs": {"type": "integer"},
                "farmer_name": {"type": "string"}
            }
        },
        "handler.availabilityResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.createDroneRequest": {
            "type": "object",
            "required": ["name", "type", "price_per_hr"],
            "properties": {
                "battery_mah": {"type": "number"},
                "capacity_liters": {"type": "number"},
                "image_url": {"type": "string"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "name": {"type": "string"},
                "price_per_hr": {"type": "number"},
                "type": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.requestOTPRequest": {
            "type": "object",
            "required": ["mobile"],
            "properties": {"mobile": {"type": "string"}}
        },
        "handler.requestOTPResponse": {
            "type": "object",
            "properties": {
                "demo_otp": {"type": "string"},
                "mobile": {"type": "string"},
                "otp_sent": {"type": "boolean"}
            }
        },
        "handler.rootResponse": {
            "type": "object",
            "properties": {
                "jwt": {"type": "boolean"},
                "otp_demo": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.statusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string"}}
        },
        "handler.verifyOTPRequest": {
            "type": "object",
            "required": ["mobile"],
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "mobile": {"type": "string"},
                "name": {"type": "string"},
                "otp": {"type": "string"},
                "role": {"type": "string", "enum": ["owner", "requester", "farmer"]}
            }
        },
        "handler.verifyOTPResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "profile_name": {"type": "string"},
                "role": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "token_type": {"type": "string"}
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Destrone API",
	Description:      "Drone rental marketplace: OTP login, drone catalogue and owner-approved bookings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
