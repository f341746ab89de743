// Package http implements the HTTP handlers of the factorstd service.
// Handlers stay thin: they decode and validate the request, call a service
// and render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → standardize
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Endpoints
//
//	POST /api/v1/standardize       JSON table in, JSON table and run report out
//	POST /api/v1/standardize/csv   CSV body in, CSV out, run report in headers
//	GET  /api/v1/methods           supported methods
//	GET  /api/v1/health            health, readiness and liveness
//	GET  /api/v1/version           build and runtime information
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 422,
//	    "detail": "[VALIDATION] column \"beta\" is not in the input data: unknown column",
//	    "instance": "/api/v1/standardize",
//	    "trace_id": "8f0c..."
//	}
package http
