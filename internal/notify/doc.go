// Package notify holds short-lived operator notifications: building created,
// delete failed, simulation started and so on. Only the most recent 20 are
// kept and nothing is persisted.
package notify
