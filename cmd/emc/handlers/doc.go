// Package handlers implements the business logic for emc CLI commands.
//
// Each exported function opens a session (configuration, logger, metrics,
// registry and provisioner), runs one lifecycle operation and renders the
// outcome. Collaborators are created through package-level factory
// variables so tests can substitute fakes.
package handlers
