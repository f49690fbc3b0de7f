// Package docs holds the Swagger spec served at /swagger. Regenerate with
// `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/stocks/search": {
            "get": {
                "description": "Look up a quote by ticker. Bare B3 tickers (e.g. PETR4) are retried with the .SA suffix.",
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Search ticker",
                "parameters": [
                    {"type": "string", "description": "Ticker", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.StockResult"}},
                    "400": {"description": "Ticker missing", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Quote not available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/stocks/suggest": {
            "get": {
                "description": "Suggest previously seen tickers matching a prefix or company name",
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Suggest tickers",
                "parameters": [
                    {"type": "string", "description": "Prefix or name", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Maximum results (1-50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SuggestResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/stocks/{ticker}": {
            "get": {
                "description": "Quote, fundamentals and a one-month chart for a ticker",
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Stock detail",
                "parameters": [
                    {"type": "string", "description": "Ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.StockDetail"}},
                    "404": {"description": "Quote not available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/stocks/{ticker}/history": {
            "get": {
                "description": "Closing prices over a period. The sampling interval is derived from the period.",
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Price history",
                "parameters": [
                    {"type": "string", "description": "Ticker", "name": "ticker", "in": "path", "required": true},
                    {"type": "string", "description": "1d, 5d, 1mo, 3mo, 6mo, ytd, 1y, 5y or max", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HistoryResponse"}},
                    "400": {"description": "Failed to fetch data", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Current quotes of the user's favorites, each with a chart color",
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Dashboard"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/favorites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "List favorites",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/favorites/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Add the ticker to the user's favorites, or remove it when already present",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Toggle favorite",
                "parameters": [
                    {"description": "Ticker and display name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ToggleFavoriteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ToggleFavoriteResponse"}},
                    "400": {"description": "Ticker missing", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/portfolio": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Value of each position and projected dividend income. Positions without a quote are listed in skipped.",
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Portfolio valuation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/market.Valuation"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Add quantity to the user's position in ticker. A position that reaches zero or below is removed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolio"],
                "summary": "Change position",
                "parameters": [
                    {"description": "Ticker and quantity delta", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddToPortfolioRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AddToPortfolioResponse"}},
                    "400": {"description": "Invalid input or zero quantity", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Quote not available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handlers.ErrorDetail"}
            }
        },
        "handlers.ToggleFavoriteRequest": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handlers.ToggleFavoriteResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "action": {"type": "string"}
            }
        },
        "handlers.AddToPortfolioRequest": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "quantity": {"type": "number"}
            }
        },
        "handlers.AddToPortfolioResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "ticker": {"type": "string"},
                "quantity": {"type": "string"},
                "removed": {"type": "boolean"}
            }
        },
        "handlers.HistoryResponse": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "period": {"type": "string"},
                "interval": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/market.HistoryPoint"}}
            }
        },
        "handlers.SuggestResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/search.Entry"}}
            }
        },
        "search.Entry": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "market.HistoryPoint": {
            "type": "object",
            "properties": {
                "Date": {"type": "string"},
                "Close": {"type": "number"},
                "Time": {"type": "string"}
            }
        },
        "market.Position": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"},
                "currency": {"type": "string"},
                "quantity": {"type": "string"},
                "current_price": {"type": "string"},
                "total_value": {"type": "string"},
                "dividend_yield": {"type": "string"},
                "dy_percent": {"type": "string"},
                "annual_income": {"type": "string"},
                "monthly_income": {"type": "string"}
            }
        },
        "market.Valuation": {
            "type": "object",
            "properties": {
                "items_with_dividends": {"type": "array", "items": {"$ref": "#/definitions/market.Position"}},
                "items_without_dividends": {"type": "array", "items": {"$ref": "#/definitions/market.Position"}},
                "skipped": {"type": "array", "items": {"type": "string"}},
                "has_items": {"type": "boolean"},
                "total_value": {"type": "string"},
                "income_annual": {"type": "string"},
                "income_semiannual": {"type": "string"},
                "income_quarterly": {"type": "string"},
                "income_monthly": {"type": "string"}
            }
        },
        "services.StockResult": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "valid": {"type": "boolean"},
                "name": {"type": "string"},
                "currency": {"type": "string"},
                "price": {"type": "string"},
                "dividend_yield": {"type": "string"},
                "dividend_yield_percent": {"type": "string"},
                "market_cap": {"type": "string"},
                "average_volume": {"type": "string"},
                "is_favorite": {"type": "boolean"}
            }
        },
        "services.StockDetail": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "dividend_yield_percent": {"type": "string"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/market.HistoryPoint"}},
                "is_favorite": {"type": "boolean"},
                "portfolio_quantity": {"type": "string"}
            }
        },
        "services.Dashboard": {
            "type": "object",
            "properties": {
                "favorites": {"type": "array", "items": {"type": "object"}},
                "unavailable": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finboard API",
	Description:      "Stock quotes, dividend-adjusted yields, favorites and portfolio valuation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
