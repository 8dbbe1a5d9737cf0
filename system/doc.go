// Package system implements hostsync.System over the raw primitives of a
// host.Host.
//
// A System owns every Mutex, Monitor, Thread and Local it creates and
// records each one in a resource table, so live primitives can be listed,
// looked up by handle and reported as leaks on Dispose.
//
// # Failure tiers
//
// Contract violations (releasing a monitor the caller does not own,
// disposing an owned monitor, joining an attached thread) and unexpected
// host statuses are fatal. They are logged, passed to Options.Abort and
// then raised as a panic carrying the *errors.Error. Thread spawn refusal
// and the unavailable platform services (Map, OpenDirectory, Load of a
// named library) are ordinary error returns.
//
// # Monitors
//
// Waiting threads park on their own condition variable, not on one shared
// by the monitor. Interrupt and Notify therefore wake exactly one chosen
// thread, and a thread can be interrupted regardless of which monitor it
// waits in.
package system
