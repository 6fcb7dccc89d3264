// Package config defines the format-agnostic settings of a run and the
// Loader interface that fills them from a settings file.
//
// Settings start from Default, are overlaid by a loaded file, and are finally
// overridden by explicit command-line flags. The concrete HCL loader lives in
// the hcl package.
package config
