// Package interfaces provides internal interface definitions shared by
// the transport's leaf packages. These are separate from the public
// interfaces to avoid circular imports between the root package and
// internal packages.
package interfaces

// Logger is the optional logging hook threaded into workers.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer receives operational events. Implementations must be
// thread-safe; methods are called from send paths, overlay callbacks,
// and dispatch workers.
type Observer interface {
	ObserveSend(messageType string, bytes int, success bool)
	ObserveReceive(messageType string, bytes int)
	ObserveDispatchDrop()
	ObservePendingQueries(delta int)
}
