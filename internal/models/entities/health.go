package entities

// ServiceStatus reports the health of one backing service.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the /healthCheck payload.
type HealthCheckResponse struct {
	Services map[string]ServiceStatus `json:"services"`
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
}
