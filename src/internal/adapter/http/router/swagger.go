package router

import (
	"fmt"
	"net/http"
)

const swaggerCSP = "default-src 'self'; style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:"

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("GET /swagger/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", swaggerCSP)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("GET /swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Cooperative Accounts API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Cooperative Accounts API",
    "description": "Member savings and checking accounts: creation, lookup, administrative update, soft deletion, deposits and withdrawals.",
    "version": "1.0.0"
  },
  "tags": [{"name": "accounts"}],
  "paths": {
    "/accounts": {
      "get": {
        "tags": ["accounts"],
        "summary": "List active accounts",
        "parameters": [
          {"name": "page", "in": "query", "schema": {"type": "integer", "minimum": 0, "default": 0}},
          {"name": "size", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10}},
          {"name": "search", "in": "query", "schema": {"type": "string"}, "description": "Substring of the account number"}
        ],
        "responses": {
          "200": {"description": "Page of accounts"},
          "400": {"description": "Validation error"}
        }
      },
      "post": {
        "tags": ["accounts"],
        "summary": "Create account",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateAccountRequest"}}}
        },
        "responses": {
          "201": {"description": "Created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Account"}}}},
          "400": {"description": "Validation error"},
          "409": {"description": "Account number already used by an active account"}
        }
      }
    },
    "/accounts/{id}": {
      "parameters": [{"$ref": "#/components/parameters/AccountID"}],
      "get": {
        "tags": ["accounts"],
        "summary": "Get active account by id",
        "responses": {
          "200": {"description": "Account", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Account"}}}},
          "404": {"description": "Not found or deleted"}
        }
      },
      "put": {
        "tags": ["accounts"],
        "summary": "Overwrite account number, balance and type",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UpdateAccountRequest"}}}
        },
        "responses": {
          "200": {"description": "Updated"},
          "400": {"description": "Validation error"},
          "404": {"description": "Not found or deleted"},
          "409": {"description": "Account number already used by another active account"}
        }
      },
      "delete": {
        "tags": ["accounts"],
        "summary": "Soft delete account",
        "responses": {
          "204": {"description": "Deleted"},
          "404": {"description": "Not found or already deleted"}
        }
      }
    },
    "/accounts/owner/{ownerId}": {
      "get": {
        "tags": ["accounts"],
        "summary": "List an owner's active accounts, newest first",
        "parameters": [{"name": "ownerId", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "Accounts"}}
      }
    },
    "/accounts/{id}/deposit": {
      "parameters": [{"$ref": "#/components/parameters/AccountID"}],
      "post": {
        "tags": ["accounts"],
        "summary": "Deposit funds",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AmountRequest"}}}},
        "responses": {
          "200": {"description": "Updated account"},
          "400": {"description": "Validation error"},
          "404": {"description": "Not found or deleted"}
        }
      }
    },
    "/accounts/{id}/withdraw": {
      "parameters": [{"$ref": "#/components/parameters/AccountID"}],
      "post": {
        "tags": ["accounts"],
        "summary": "Withdraw funds",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AmountRequest"}}}},
        "responses": {
          "200": {"description": "Updated account"},
          "400": {"description": "Validation error"},
          "404": {"description": "Not found or deleted"},
          "422": {"description": "Insufficient funds"}
        }
      }
    },
    "/health": {
      "get": {"summary": "Liveness", "responses": {"200": {"description": "OK"}}}
    }
  },
  "components": {
    "parameters": {
      "AccountID": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
    },
    "schemas": {
      "CreateAccountRequest": {
        "type": "object",
        "required": ["ownerId", "accountNumber", "balance", "accountType"],
        "properties": {
          "ownerId": {"type": "string", "format": "uuid"},
          "accountNumber": {"type": "string", "pattern": "^[0-9A-Z-]{5,20}$", "example": "001-100000005"},
          "balance": {"type": "number", "minimum": 0, "maximum": 999999999.99},
          "accountType": {"type": "string", "enum": ["SAVINGS", "CHECKING", "TERM_DEPOSIT"]}
        }
      },
      "UpdateAccountRequest": {
        "type": "object",
        "required": ["accountNumber", "balance", "accountType"],
        "properties": {
          "ownerId": {"type": "string", "format": "uuid", "description": "Must match the current owner when sent"},
          "accountNumber": {"type": "string", "pattern": "^[0-9A-Z-]{5,20}$"},
          "balance": {"type": "number", "minimum": 0, "maximum": 999999999.99},
          "accountType": {"type": "string", "enum": ["SAVINGS", "CHECKING", "TERM_DEPOSIT"]}
        }
      },
      "AmountRequest": {
        "type": "object",
        "required": ["amount"],
        "properties": {"amount": {"type": "number", "exclusiveMinimum": true, "minimum": 0}}
      },
      "Account": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "ownerId": {"type": "string", "format": "uuid"},
          "accountNumber": {"type": "string"},
          "balance": {"type": "string", "example": "1000.00"},
          "accountType": {"type": "string"},
          "status": {"type": "string", "enum": ["ACTIVE", "INACTIVE"]},
          "active": {"type": "boolean"},
          "createdAt": {"type": "string", "format": "date-time"},
          "updatedAt": {"type": "string", "format": "date-time"}
        }
      }
    }
  }
}`
