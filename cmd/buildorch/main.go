package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mpcops/node-provisioning/buildorch"
	"github.com/mpcops/node-provisioning/cmd/flags"
	"github.com/mpcops/node-provisioning/common"
)

var regionFlag = &cli.StringFlag{
	Name:     "region",
	Required: true,
	Usage:    "AWS region of the CodeBuild project",
	EnvVars:  []string{"AWS_REGION"},
}

var eventFileFlag = &cli.StringFlag{
	Name:     "event-file",
	Required: true,
	Usage:    "path to a lifecycle event JSON document",
	EnvVars:  []string{"EVENT_FILE"},
}

func main() {
	app := &cli.App{
		Name:    "node-buildorch",
		Usage:   "Submit and track remote node-image builds",
		Version: common.Version,
		Flags:   append(flags.CommonFlags, flags.LogServiceFlagFn("node-buildorch")),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "submit a build and poll it to completion",
				Flags: []cli.Flag{
					regionFlag,
					&cli.StringFlag{
						Name:     "project",
						Required: true,
						Usage:    "CodeBuild project name",
						EnvVars:  []string{"BUILD_PROJECT"},
					},
					&cli.StringFlag{
						Name:    "source-hash",
						Usage:   "source revision to build",
						EnvVars: []string{"BUILD_SOURCE_HASH"},
					},
					&cli.StringFlag{
						Name:    "artifact-tag",
						Usage:   "tag for the produced artifact",
						EnvVars: []string{"BUILD_ARTIFACT_TAG"},
					},
				},
				Action: runBuild,
			},
			{
				Name:   "on-event",
				Usage:  "handle one lifecycle event and print the response",
				Flags:  []cli.Flag{regionFlag, eventFileFlag},
				Action: runOnEvent,
			},
			{
				Name:   "is-complete",
				Usage:  "check one lifecycle event for completion and print the response",
				Flags:  []cli.Flag{regionFlag, eventFileFlag},
				Action: runIsComplete,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newOrchestrator(cCtx *cli.Context) (*buildorch.Orchestrator, error) {
	logger := flags.SetupLogger(cCtx)
	service, err := buildorch.NewCodeBuildService(cCtx.String("region"), logger)
	if err != nil {
		return nil, err
	}
	return buildorch.NewOrchestrator(service, logger), nil
}

func runBuild(cCtx *cli.Context) error {
	o, err := newOrchestrator(cCtx)
	if err != nil {
		return err
	}

	resp, err := o.Await(cCtx.Context, buildorch.Event{
		RequestType: buildorch.RequestCreate,
		Properties: buildorch.BuildRequest{
			Project:     cCtx.String("project"),
			SourceHash:  cCtx.String("source-hash"),
			ArtifactTag: cCtx.String("artifact-tag"),
		},
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runOnEvent(cCtx *cli.Context) error {
	o, err := newOrchestrator(cCtx)
	if err != nil {
		return err
	}
	ev, err := readEvent(cCtx.String("event-file"))
	if err != nil {
		return err
	}

	resp, err := o.OnEvent(cCtx.Context, ev)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runIsComplete(cCtx *cli.Context) error {
	o, err := newOrchestrator(cCtx)
	if err != nil {
		return err
	}
	ev, err := readEvent(cCtx.String("event-file"))
	if err != nil {
		return err
	}

	resp, err := o.IsComplete(cCtx.Context, ev)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func readEvent(path string) (buildorch.Event, error) {
	var ev buildorch.Event
	raw, err := os.ReadFile(path)
	if err != nil {
		return ev, fmt.Errorf("reading event file: %w", err)
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("parsing event file: %w", err)
	}
	return ev, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
