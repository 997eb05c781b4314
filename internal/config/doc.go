// Package config defines the format-agnostic settings model for trial-run
// and the Loader interface that fills it from files on disk.
//
// Settings only ever supply defaults: anything given on the command line
// wins. The concrete HCL loader lives in the hcl package.
package config
