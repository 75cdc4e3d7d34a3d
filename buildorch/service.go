package buildorch

import (
	"context"

	"github.com/mpcops/node-provisioning/interfaces"
)

// BuildRequest describes a build to submit to the remote build service.
type BuildRequest struct {
	// Project is the build service project to run.
	Project string `json:"project"`

	// SourceHash pins the source revision to build.
	SourceHash string `json:"source_hash,omitempty"`

	// ArtifactTag labels the produced artifact.
	ArtifactTag string `json:"artifact_tag,omitempty"`
}

// BuildService starts builds on a remote build system and reports their
// status. Implementations never cancel a build: abandoning an in-flight
// build is a pure client-side disconnection.
type BuildService interface {
	// Start submits a build and returns the service-assigned identifier.
	Start(ctx context.Context, req BuildRequest) (string, error)

	// Status reports the current status for a previously started build.
	Status(ctx context.Context, id string) (interfaces.BuildStatus, error)
}
