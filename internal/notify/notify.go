package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxNotifications bounds how many notifications a Center keeps.
const MaxNotifications = 20

// ErrNotFound is returned when dismissing an unknown notification.
var ErrNotFound = errors.New("notify: notification not found")

// Type is the severity of a notification.
type Type string

// Notification severities.
const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
)

// Notification is a transient message for the operator.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Center keeps the most recent notifications in memory.
type Center struct {
	mu        sync.RWMutex
	items     []Notification
	observers []func(Notification)
}

// NewCenter creates an empty center.
func NewCenter() *Center {
	return &Center{}
}

// Subscribe registers fn to be called for every added notification.
func (c *Center) Subscribe(fn func(Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Add records a notification and tells observers. The oldest entry is
// dropped once MaxNotifications is exceeded.
func (c *Center) Add(typ Type, title, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if len(c.items) > MaxNotifications {
		c.items = append([]Notification(nil), c.items[len(c.items)-MaxNotifications:]...)
	}
	observers := make([]func(Notification), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(n)
	}
	return n
}

// Success is shorthand for Add(TypeSuccess, ...).
func (c *Center) Success(title, message string) Notification {
	return c.Add(TypeSuccess, title, message)
}

// Error is shorthand for Add(TypeError, ...).
func (c *Center) Error(title, message string) Notification {
	return c.Add(TypeError, title, message)
}

// Info is shorthand for Add(TypeInfo, ...).
func (c *Center) Info(title, message string) Notification {
	return c.Add(TypeInfo, title, message)
}

// Dismiss removes a notification by ID.
func (c *Center) Dismiss(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// List returns the notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}
