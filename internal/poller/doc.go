// Package poller refreshes remote lists on a fixed interval.
//
// The dashboard keeps two: the building list every 30 seconds and the
// selected building's devices every 5 seconds. A failed fetch keeps the
// previous value and records the error until the next tick succeeds.
package poller
