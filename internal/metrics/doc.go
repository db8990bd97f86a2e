// Package metrics records measurements of a coordinator run in a private
// Prometheus registry and writes them in the text exposition format.
package metrics
