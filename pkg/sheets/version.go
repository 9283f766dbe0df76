// Package sheets holds module-level metadata shared by the CLI.
package sheets

// Version is the released version of the sheets tool.
const Version = "0.1.0"
