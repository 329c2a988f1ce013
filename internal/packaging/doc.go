// Package packaging hands a complete artifact mapping to the external installer
// generator. Generating the installer itself is the generator's job.
package packaging
