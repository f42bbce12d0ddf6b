// Package docs registers the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Database unreachable", "schema": {"type": "object"}}
                }
            }
        },
        "/players": {
            "get": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "List players sorted by name",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Register a player",
                "parameters": [
                    {"description": "Player", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreatePlayerInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Document already registered", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/players/{playerID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Get a player with ranking history",
                "parameters": [{"type": "integer", "description": "Player ID", "name": "playerID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"enum": ["created", "in_progress", "finished"], "type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [
                    {"description": "Tournament", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Same name, category and start date", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Get a tournament with enrolled players",
                "parameters": [{"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/players": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Enroll a player",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "tournamentID", "in": "path", "required": true},
                    {"description": "Player to enroll", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.enrollPlayerInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Tournament or player not found", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "412": {"description": "Enrollment closed", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/tournaments/{tournamentID}/players/{playerID}": {
            "delete": {
                "tags": ["tournaments"],
                "summary": "Unenroll a player",
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "name": "playerID", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tournaments/{tournamentID}/bracket": {
            "get": {
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Get the bracket ordered by round and slot",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Generate the bracket",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "412": {"description": "Fewer than two players or format not implemented", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            },
            "delete": {
                "tags": ["brackets"],
                "summary": "Delete the bracket and return the tournament to created",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tournaments/{tournamentID}/archive": {
            "get": {
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Download the archived snapshot of a finished bracket",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not archived yet", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Archive a finished bracket now",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created", "schema": {"type": "object"}}}
            }
        },
        "/matches/{matchID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Get a match",
                "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/matches/{matchID}/result": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Report a match result",
                "parameters": [
                    {"type": "integer", "name": "matchID", "in": "path", "required": true},
                    {"description": "Scores", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.reportResultInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Negative scores or a draw", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "409": {"description": "Result already recorded", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}},
                    "412": {"description": "Match is missing a player", "schema": {"$ref": "#/definitions/handlers.errorEnvelope"}}
                }
            }
        },
        "/ranking": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ranking"],
                "summary": "Ranking table",
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/ranking/players/{playerID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ranking"],
                "summary": "Player position and neighbouring entries",
                "parameters": [
                    {"type": "integer", "name": "playerID", "in": "path", "required": true},
                    {"type": "string", "name": "category", "in": "query", "required": true},
                    {"type": "integer", "name": "radius", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ranking"],
                "summary": "Set the exact point total of a player",
                "parameters": [
                    {"type": "integer", "name": "playerID", "in": "path", "required": true},
                    {"description": "Category and points", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.setPointsInput"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/ranking/categories/{category}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ranking"],
                "summary": "Delete every ranking entry of a category",
                "parameters": [{"type": "string", "name": "category", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        }
    },
    "definitions": {
        "handlers.errorEnvelope": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "kind": {"type": "string", "enum": ["not_found", "validation", "conflict", "precondition", "internal"]},
                        "message": {"type": "string"}
                    }
                }
            }
        },
        "handlers.enrollPlayerInput": {
            "type": "object",
            "properties": {"player_id": {"type": "integer"}}
        },
        "handlers.reportResultInput": {
            "type": "object",
            "properties": {"score_a": {"type": "integer"}, "score_b": {"type": "integer"}}
        },
        "handlers.setPointsInput": {
            "type": "object",
            "properties": {"category": {"type": "string"}, "points": {"type": "integer"}}
        },
        "services.CreatePlayerInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "document": {"type": "string"},
                "age": {"type": "integer"},
                "category": {"type": "string"}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "category": {"type": "string"},
                "bracket_type": {"type": "string", "enum": ["single_elimination", "double_elimination", "round_robin"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"}
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
	Title:            "Table Tennis League API",
	Description:      "Players, tournaments, single elimination brackets and category rankings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
