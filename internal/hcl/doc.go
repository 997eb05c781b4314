// Package hcl provides the HCL implementation of config.Loader. Settings
// files are parsed with hclparse, decoded with gohcl and evaluated against
// a context that exposes the process environment as the env object.
package hcl
