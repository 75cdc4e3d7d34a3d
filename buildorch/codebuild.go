package buildorch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/codebuild"

	"github.com/mpcops/node-provisioning/interfaces"
)

// CodeBuildService runs builds on AWS CodeBuild.
type CodeBuildService struct {
	client codebuildAPI
	log    *slog.Logger
}

// codebuildAPI is the slice of the CodeBuild client the service uses.
type codebuildAPI interface {
	StartBuildWithContext(ctx aws.Context, input *codebuild.StartBuildInput, opts ...request.Option) (*codebuild.StartBuildOutput, error)
	BatchGetBuildsWithContext(ctx aws.Context, input *codebuild.BatchGetBuildsInput, opts ...request.Option) (*codebuild.BatchGetBuildsOutput, error)
}

// NewCodeBuildService creates a build service backed by AWS CodeBuild in the
// given region.
func NewCodeBuildService(region string, log *slog.Logger) (*CodeBuildService, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &CodeBuildService{client: codebuild.New(sess), log: log}, nil
}

// Start submits a build to CodeBuild and returns its build identifier.
func (s *CodeBuildService) Start(ctx context.Context, req BuildRequest) (string, error) {
	input := &codebuild.StartBuildInput{
		ProjectName: aws.String(req.Project),
	}
	if req.SourceHash != "" {
		input.SourceVersion = aws.String(req.SourceHash)
	}
	if req.ArtifactTag != "" {
		input.EnvironmentVariablesOverride = []*codebuild.EnvironmentVariable{{
			Name:  aws.String("ARTIFACT_TAG"),
			Value: aws.String(req.ArtifactTag),
			Type:  aws.String(codebuild.EnvironmentVariableTypePlaintext),
		}}
	}

	out, err := s.client.StartBuildWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: starting build for project %s: %v", interfaces.ErrRemoteOperationFailed, req.Project, err)
	}
	id := aws.StringValue(out.Build.Id)
	s.log.Info("submitted remote build", slog.String("project", req.Project), slog.String("build_id", id))
	return id, nil
}

// Status fetches the current status of a CodeBuild build.
func (s *CodeBuildService) Status(ctx context.Context, id string) (interfaces.BuildStatus, error) {
	out, err := s.client.BatchGetBuildsWithContext(ctx, &codebuild.BatchGetBuildsInput{
		Ids: []*string{aws.String(id)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: fetching build %s: %v", interfaces.ErrTransientInfra, id, err)
	}
	if len(out.Builds) == 0 {
		return "", fmt.Errorf("%w: build %s not found", interfaces.ErrRemoteOperationFailed, id)
	}
	return mapCodeBuildStatus(aws.StringValue(out.Builds[0].BuildStatus), aws.StringValue(out.Builds[0].CurrentPhase))
}

// mapCodeBuildStatus translates CodeBuild's status vocabulary into ours.
// CodeBuild reports IN_PROGRESS for everything from submission to completion,
// so the current phase distinguishes pending from running.
func mapCodeBuildStatus(status, phase string) (interfaces.BuildStatus, error) {
	switch status {
	case codebuild.StatusTypeInProgress:
		if strings.EqualFold(phase, "SUBMITTED") || strings.EqualFold(phase, "QUEUED") {
			return interfaces.BuildPending, nil
		}
		return interfaces.BuildRunning, nil
	case codebuild.StatusTypeSucceeded:
		return interfaces.BuildSucceeded, nil
	case codebuild.StatusTypeFailed:
		return interfaces.BuildFailed, nil
	case codebuild.StatusTypeFault:
		return interfaces.BuildFaulted, nil
	case codebuild.StatusTypeStopped:
		return interfaces.BuildStopped, nil
	case codebuild.StatusTypeTimedOut:
		return interfaces.BuildTimedOut, nil
	default:
		return "", fmt.Errorf("unknown build status %q", status)
	}
}
