// Package preflight verifies that the filesystem locations hopperd depends
// on exist and are accessible before the daemon takes its lock.
package preflight
