// Package logging provides the logging interface shared by the coordinator and
// the worker helper. It abstracts the zerolog backend so components take a
// Logger and never a concrete backend.
package logging
