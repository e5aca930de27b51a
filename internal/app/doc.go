// Package app encapsulates the application's dependencies, configuration,
// and lifecycle: it assembles the logger, manifest model, hook registry and
// generation pipeline, then runs either a one-shot build or the dev server.
package app
