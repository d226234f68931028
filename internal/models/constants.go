// Package models contains data types and constants for the generative-language API.
package models

import (
	"strings"
)

// Endpoints for the generative-language API
const (
	// DefaultBaseURL is the API root; the model path and key are appended per request.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// GenerateContentPath is templated with the model identifier.
	GenerateContentPath = "/models/%s:generateContent"
)

// Default model identifiers, tried in this order.
const (
	Model25FlashPreview = "gemini-2.5-flash-preview-09-2025"
	Model20FlashExp     = "gemini-2.0-flash-exp"
	Model15Flash        = "gemini-1.5-flash"
)

// ApologyText is the AI message appended when every model in the chain fails.
const ApologyText = "Sorry, all AI models are currently busy or unavailable. Please try again later."

// DefaultModels returns the fallback chain used when none is configured.
func DefaultModels() []string {
	return []string{
		Model25FlashPreview,
		Model20FlashExp,
		Model15Flash,
	}
}

// ParseModelList splits a comma-separated list of model identifiers,
// dropping blanks and duplicates while keeping order.
func ParseModelList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// DefaultHeaders returns the headers sent with every generate request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":    "application/json",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"User-Agent":      "geminichat/0.1 (+https://github.com/diogo/geminichat)",
	}
}
