// Package main (cmd/buildorch) drives remote node-image builds on AWS
// CodeBuild through the provisioning lifecycle.
//
// The "run" command submits a build and polls it in-process until it
// succeeds, fails, or the overall deadline expires. The "on-event" and
// "is-complete" commands each handle a single lifecycle event read from a
// JSON file and print the response, for use behind a deployment system that
// drives the two callbacks itself.
package main
