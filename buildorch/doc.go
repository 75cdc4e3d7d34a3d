// Package buildorch drives remote node-binary builds through a two-callback
// provisioning lifecycle. OnEvent knows how to start a build; IsComplete
// knows how to tell whether it finished. Keeping the two separate lets the
// deployment system retry and observe without the build service needing any
// provisioning-specific awareness.
package buildorch
