// Package setup reads the process environment a build depends on.
//
// It runs once at startup, before anything touches the filesystem, and is the only
// package allowed to log through a package-level logger.
package setup
