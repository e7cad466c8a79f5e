// Package flock provides cross-platform file locking utilities.
//
// The validate command uses an exclusive, non-blocking lock on a file under
// the project's .veritas directory so two concurrent runs cannot clobber
// each other's report and log artifacts. Locks work on both Unix and
// Windows systems.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
