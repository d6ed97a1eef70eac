// Package report renders health reports and call outcomes into structured
// response bodies. Rendering is pure formatting; the semantic content of
// the inputs is never altered.
package report

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/muhammad21236/limbic-devops-assessment/internal/client"
	"github.com/muhammad21236/limbic-devops-assessment/internal/health"
)

// HealthResponse is the rendered form of a composite health report.
type HealthResponse struct {
	Overall     health.Overall       `json:"overall"`
	Probes      []health.ProbeResult `json:"probes"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// CallResponse is the rendered form of a call outcome. For failures the
// error kind and diagnostics are surfaced verbatim so operators can act
// without re-deriving the cause from logs.
type CallResponse struct {
	Success     bool              `json:"success"`
	StatusCode  int               `json:"statusCode,omitempty"`
	Payload     json.RawMessage   `json:"payload,omitempty"`
	ErrorKind   client.ErrorKind  `json:"errorKind,omitempty"`
	ElapsedMs   int64             `json:"elapsedMs"`
	Diagnostics map[string]string `json:"diagnostics,omitempty"`
}

// NoRouteResponse is the fixed "no route" response body.
type NoRouteResponse struct {
	Error    string `json:"error"`
	Hostname string `json:"hostname"`
}

// RenderHealth renders a health report and the HTTP status to serve it
// with. Consumers always receive a report; an undeterminable state is
// already expressed inside it as unknown or degraded.
func RenderHealth(r health.HealthReport) (HealthResponse, int) {
	status := http.StatusOK
	if r.Overall == health.OverallUnhealthy {
		status = http.StatusServiceUnavailable
	}

	return HealthResponse{
		Overall:     r.Overall,
		Probes:      r.Probes,
		GeneratedAt: r.GeneratedAt,
	}, status
}

// RenderCall renders a call outcome and the HTTP status to serve it with.
func RenderCall(o *client.CallOutcome) (CallResponse, int) {
	resp := CallResponse{
		Success:     o.Success,
		StatusCode:  o.StatusCode,
		ErrorKind:   o.ErrorKind,
		ElapsedMs:   o.ElapsedMs,
		Diagnostics: o.Diagnostics,
	}

	if o.Success {
		if json.Valid(o.Payload) {
			resp.Payload = json.RawMessage(o.Payload)
		} else if len(o.Payload) > 0 {
			quoted, _ := json.Marshal(string(o.Payload))
			resp.Payload = quoted
		}
		return resp, http.StatusOK
	}

	switch o.ErrorKind {
	case client.ErrorKindTimeout:
		return resp, http.StatusGatewayTimeout
	default:
		return resp, http.StatusBadGateway
	}
}

// RenderNoRoute renders the fixed "no route" response for a hostname that
// matched only the terminal rule. It is always a terminal 404, never a
// transient failure.
func RenderNoRoute(hostname string) (NoRouteResponse, int) {
	return NoRouteResponse{
		Error:    "no route",
		Hostname: hostname,
	}, http.StatusNotFound
}
