package models

// Assistant is a preconfigured remote conversational agent. Assistants are
// loaded once at startup from static configuration and never mutated.
type Assistant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Color is an optional accent color in "#RRGGBB" form.
	Color string `json:"color,omitempty"`
}
