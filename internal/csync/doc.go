// Package csync provides small mutex-guarded generic containers shared by
// the front end and its background workers.
package csync
