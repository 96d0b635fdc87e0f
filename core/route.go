package core

// Route describes a navigable view of the presentation layer.
type Route struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// Decision is the outcome of a guard check. When Allow is false the
// caller must navigate to Redirect instead.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
