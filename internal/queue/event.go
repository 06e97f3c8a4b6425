// Package queue defines the auth activity events exchanged over RabbitMQ
// together with their publisher and the background consumer.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published on the auth.events queue.
const (
	UserRegistered  = "user.registered"
	PasswordUpdated = "password.updated"
)

// AuthEvent is published after an account was created or its password
// changed. It carries identity only, never credentials, so consumers can
// log or notify without querying the primary database.
type AuthEvent struct {
	Type      string `json:"type"`
	Regno     string `json:"regno"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	At        string `json:"at"` // RFC3339, UTC
}

// NewAuthEvent stamps an event of type typ for regno with the current time.
func NewAuthEvent(typ, regno, firstname, lastname string) AuthEvent {
	return AuthEvent{
		Type:      typ,
		Regno:     regno,
		Firstname: firstname,
		Lastname:  lastname,
		At:        time.Now().UTC().Format(time.RFC3339),
	}
}

// DecodeAuthEvent parses a message body and rejects unknown event types.
func DecodeAuthEvent(body []byte) (AuthEvent, error) {
	var ev AuthEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return AuthEvent{}, fmt.Errorf("unmarshal: %w", err)
	}
	switch ev.Type {
	case UserRegistered, PasswordUpdated:
		return ev, nil
	default:
		return AuthEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
}
