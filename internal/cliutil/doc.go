// Package cliutil holds the flag and logging glue shared by the
// secure counter command line tools.
package cliutil
