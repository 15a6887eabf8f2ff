// Package daemon hosts the long-running clipper process: the HTTP API,
// the pipeline executor behind it, and a lock file that enforces a
// single instance per machine.
package daemon
