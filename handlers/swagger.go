package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the Swagger UI and the OpenAPI document.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>b2b-portal API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": {
    "title": "b2b-portal",
    "version": "v1.0.0"
  },
  "components": {
    "securitySchemes": {
      "bearer": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      }
    }
  },
  "paths": {
    "/api/auth/signup": {
      "post": {
        "summary": "Register a company (pending until phone verified)",
        "responses": {
          "201": {
            "description": "created"
          },
          "400": {
            "description": "invalid request"
          },
          "409": {
            "description": "conflict"
          }
        }
      }
    },
    "/api/auth/otp/send": {
      "post": {
        "summary": "Send a signup or login OTP",
        "responses": {
          "200": {
            "description": "ok"
          },
          "404": {
            "description": "not found"
          },
          "409": {
            "description": "conflict"
          },
          "429": {
            "description": "too many requests"
          }
        }
      }
    },
    "/api/auth/otp/verify": {
      "post": {
        "summary": "Verify an OTP and receive tokens",
        "responses": {
          "200": {
            "description": "ok"
          },
          "401": {
            "description": "unauthorized"
          },
          "410": {
            "description": "expired"
          },
          "429": {
            "description": "too many requests"
          }
        }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Password login for company, employee or admin",
        "responses": {
          "200": {
            "description": "ok"
          },
          "401": {
            "description": "unauthorized"
          },
          "403": {
            "description": "forbidden"
          }
        }
      }
    },
    "/api/auth/refresh": {
      "post": {
        "summary": "Rotate a refresh token",
        "responses": {
          "200": {
            "description": "ok"
          },
          "401": {
            "description": "unauthorized"
          }
        }
      }
    },
    "/api/auth/logout": {
      "post": {
        "summary": "Delete the refresh session and revoke the access token",
        "responses": {
          "200": {
            "description": "ok"
          }
        }
      }
    },
    "/api/company/profile": {
      "get": {
        "summary": "Company profile",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/company/employees": {
      "get": {
        "summary": "List employees",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/company/wallet": {
      "get": {
        "summary": "Wallet balance",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/company/wallet/transactions": {
      "get": {
        "summary": "Wallet ledger",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/employee/profile": {
      "get": {
        "summary": "Employee profile with company name",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/hotels/search": {
      "post": {
        "summary": "Search hotels; prices include markup",
        "responses": {
          "200": {
            "description": "ok"
          },
          "400": {
            "description": "invalid request"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/hotels/{hotelId}/packages": {
      "get": {
        "summary": "Room packages of a searched hotel",
        "responses": {
          "200": {
            "description": "ok"
          },
          "410": {
            "description": "expired"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings/policy": {
      "post": {
        "summary": "Cancellation policy and price",
        "responses": {
          "200": {
            "description": "ok"
          },
          "410": {
            "description": "expired"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings/prebook": {
      "post": {
        "summary": "Hold a package and create a prebooked booking",
        "responses": {
          "201": {
            "description": "created"
          },
          "400": {
            "description": "invalid request"
          },
          "410": {
            "description": "expired"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings": {
      "get": {
        "summary": "List bookings visible to the caller",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings/{id}/confirm": {
      "post": {
        "summary": "Pay from wallet and confirm",
        "responses": {
          "200": {
            "description": "ok"
          },
          "402": {
            "description": "insufficient wallet balance"
          },
          "409": {
            "description": "conflict"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings/{id}/cancel": {
      "post": {
        "summary": "Cancel a confirmed booking and refund",
        "responses": {
          "200": {
            "description": "ok"
          },
          "409": {
            "description": "conflict"
          },
          "502": {
            "description": "supplier failure"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/bookings/{id}/voucher": {
      "get": {
        "summary": "Presigned voucher URL",
        "responses": {
          "200": {
            "description": "ok"
          },
          "404": {
            "description": "not found"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/me": {
      "get": {
        "summary": "Current admin",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/companies": {
      "get": {
        "summary": "List companies",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/companies/{id}": {
      "get": {
        "summary": "Company with wallet balance",
        "responses": {
          "200": {
            "description": "ok"
          },
          "404": {
            "description": "not found"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/companies/{id}/wallet/credit": {
      "post": {
        "summary": "Credit a company wallet",
        "responses": {
          "200": {
            "description": "ok"
          },
          "400": {
            "description": "invalid request"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/companies/{id}/wallet/debit": {
      "post": {
        "summary": "Debit a company wallet",
        "responses": {
          "200": {
            "description": "ok"
          },
          "402": {
            "description": "insufficient wallet balance"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/markups/{hotelId}": {
      "put": {
        "summary": "Create or replace a hotel markup",
        "responses": {
          "200": {
            "description": "ok"
          },
          "400": {
            "description": "invalid request"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/config": {
      "get": {
        "summary": "Pricing configuration",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/bookings": {
      "get": {
        "summary": "List bookings across companies",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/api/admin/audit": {
      "get": {
        "summary": "Audit log",
        "responses": {
          "200": {
            "description": "ok"
          }
        },
        "security": [
          {
            "bearer": []
          }
        ]
      }
    },
    "/health": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {
            "description": "ok"
          }
        }
      }
    },
    "/ready": {
      "get": {
        "summary": "Readiness check",
        "responses": {
          "200": {
            "description": "ok"
          },
          "503": {
            "description": "not ready"
          }
        }
      }
    }
  }
}`
