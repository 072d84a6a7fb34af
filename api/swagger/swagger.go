package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedcore Optimisation Gateway",
        "description": "HTTP surface around the timetabling optimisation core",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/optimise": {
            "post": {
                "summary": "Run a synchronous optimisation solve",
                "tags": ["Scheduling"],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Constraint model could not be built or solved"
                    }
                }
            }
        },
        "/proposals/{proposal_id}/commit": {
            "post": {
                "summary": "Persist a staged proposal as a run",
                "tags": ["Scheduling"],
                "responses": {
                    "204": {
                        "description": "Committed"
                    },
                    "404": {
                        "description": "Proposal not found or expired"
                    }
                }
            }
        },
        "/jobs": {
            "post": {
                "summary": "Submit an asynchronous optimisation solve",
                "tags": ["Jobs"],
                "responses": {
                    "202": {
                        "description": "Accepted"
                    }
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "summary": "Fetch an asynchronous job's status",
                "tags": ["Jobs"],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Job not found"
                    }
                }
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
