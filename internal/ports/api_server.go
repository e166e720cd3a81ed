package ports

// APIServer defines the interface for the outward-facing request surface
type APIServer interface {
	// Start begins serving requests in the background
	Start() error

	// Stop drains in-flight requests and shuts the server down
	Stop() error
}
