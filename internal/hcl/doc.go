// Package hcl is the HCL-specific manifest loader. It parses .hcl manifest
// files (or directories of them), decodes the options/preset/image blocks,
// and translates them into the format-agnostic config model.
package hcl
