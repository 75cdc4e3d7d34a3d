package buildorch

// RequestType is the lifecycle operation requested by the deployment system.
type RequestType string

const (
	// RequestCreate provisions a new build.
	RequestCreate RequestType = "create"
	// RequestUpdate re-provisions by submitting a new build.
	RequestUpdate RequestType = "update"
	// RequestDelete tears the resource down. A build in flight is abandoned,
	// never cancelled.
	RequestDelete RequestType = "delete"
)

// Event is a single provisioning-lifecycle request.
type Event struct {
	// RequestType is one of create, update or delete.
	RequestType RequestType `json:"request_type"`

	// PhysicalResourceID is the identifier assigned by a prior create or
	// update, if any.
	PhysicalResourceID string `json:"physical_resource_id,omitempty"`

	// Properties carries the requested build parameters.
	Properties BuildRequest `json:"properties"`
}

// EventResponse is returned by OnEvent. The physical resource identifier is
// the tracking token handed back to IsComplete; Data is opaque to the caller.
type EventResponse struct {
	PhysicalResourceID string            `json:"physical_resource_id"`
	Data               map[string]string `json:"data,omitempty"`
}

// CompletionResponse is returned by IsComplete. The deployment system is
// expected to re-invoke IsComplete after a fixed interval until Complete is
// true or an error is raised.
type CompletionResponse struct {
	Complete bool `json:"complete"`
}
