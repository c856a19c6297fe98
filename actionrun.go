// Package actionrun launches a CI action's entrypoint script and maps
// its exit status onto the host's failure conventions.
package actionrun

// Version is the release version of actionrun.
const Version = "0.3.1"
