package server

const (
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Everything else goes through the authorization gate
	RouteEdge = "/"
)
