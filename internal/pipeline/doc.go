// Package pipeline composes the preset engine, identity generator,
// single-flight request cache and on-disk cache store into the generation
// pipeline: one parsed image request in, one assembled source-set
// descriptor out. The pipeline owns no pixel logic and no durable state;
// it is a coordinator over the caches and the imaging collaborator.
package pipeline
