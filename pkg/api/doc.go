// Package api exposes the render pipeline over HTTP so a host tool (a web UI,
// a scheduler) can request DOT output without shelling out to the CLI.
//
// # Endpoints
//
//	POST /api/v1/render        render one workflow
//	POST /api/v1/dependencies  render the cross-workflow dependency graph
//	GET  /healthz              liveness and version
//
// Request bodies are JSON. The embedded workflow, state and dependency
// documents use the same schema as the files read by package io:
//
//	{
//	  "workflow": {"id": "etl", "nodes": [{"id": "extract"}, {"id": "load"}],
//	               "edges": [{"from": "extract", "to": "load"}]},
//	  "states":   {"extract": "success"},
//	  "options":  {"clusters_first": true}
//	}
//
// When "states" is omitted and the server has a run-state source, the latest
// run of the workflow is used.
//
// # Responses
//
// Responses use a common envelope:
//
//	{"success": true, "request_id": "...", "data": {"dot": "digraph etl {...}", ...}}
//	{"success": false, "request_id": "...", "error": {"code": "UNKNOWN_ENDPOINT", "message": "..."}}
//
// Clients sending "Accept: text/vnd.graphviz" get the raw DOT text instead,
// with an ETag derived from its hash.
//
// Every response carries an X-Request-ID header. A request ID supplied by
// the client is echoed back; otherwise a UUID is generated.
package api
