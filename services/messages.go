package services

// User-facing notification texts.
const (
	msgLoginSuccess       = "Welcome back! Login successful."
	msgInvalidCredentials = "Invalid email or password. Please sign up first."
	msgPasswordMismatch   = "Passwords do not match"
	msgUserExists         = "User already exists. Please login instead."
	msgMissingFields      = "Please fill all fields"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgSignupSuccess      = "Account created successfully! Welcome to TicketFlow."
	msgAuthUnavailable    = "Something went wrong. Please try again."
	msgLoggedOut          = "You have been logged out successfully."

	msgTicketCreated  = "Ticket created successfully!"
	msgCreateFailed   = "Failed to create ticket. Please try again."
	msgTicketUpdated  = "Ticket updated successfully!"
	msgUpdateFailed   = "Failed to update ticket. Please try again."
	msgTicketDeleted  = "Ticket deleted successfully!"
	msgDeleteFailed   = "Failed to delete ticket. Please try again."
	msgTicketResolved = "Ticket resolved successfully!"
	msgCommentAdded   = "Comment added successfully!"
	msgTicketNotFound = "Ticket not found."
)
