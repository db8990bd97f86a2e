// Package app wires configuration, logging, metrics and progress reporting
// around the coordinator and the worker helper. The cmd packages only call
// New/Run and RunHelper and exit with the returned code.
package app
