// Package model defines the domain types shared across the application.
package model

import "time"

// Client is a person who asked to be alerted about matching ads.
// Clients are created through the API or CLI and are read-only to the
// watcher loop.
type Client struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	WhatsApp  string    `json:"whatsapp,omitempty"`
	ID        int64     `json:"id"`
}

// HasEmail reports whether the client can be reached by email.
func (c *Client) HasEmail() bool {
	return c.Email != ""
}

// HasWhatsApp reports whether the client can be reached over WhatsApp.
func (c *Client) HasWhatsApp() bool {
	return c.WhatsApp != ""
}
