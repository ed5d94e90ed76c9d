package training

const (
	titleSuccess = "Success"
	titleError   = "Error"
	titleInfo    = "Info"
	titleWarning = "Warning"

	msgCourseCreated      = "Course created successfully!"
	msgSessionCreated     = "Session created successfully!"
	msgRegistered         = "Successfully registered for session!"
	msgCancelled          = "Registration cancelled successfully!"
	msgAlreadyRegistered  = "You are already registered for this session."
	msgSessionFull        = "This session is full."
	msgUnknownStatus      = "Unexpected response from server: %s"
	msgLoadSessionsFailed = "Failed to load sessions: "
)
