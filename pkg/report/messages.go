package report

const (
	titleSuccess = "Success"
	titleError   = "Error"
	titleInfo    = "Info"

	msgIncomplete       = "Please complete all required fields."
	msgSuccess          = "Your OIG report has been submitted successfully."
	msgAnonymousSuccess = "Your anonymous OIG report has been submitted successfully. An email with your Anonymous ID (%s) has been sent to your email address."
	msgUnexpected       = "An unexpected error occurred. Please try again."

	msgLookupAnonymousID = "Please enter your Anonymous ID."
	msgLookupContact     = "Please enter both your full name and email address."
	msgLookupEmpty       = "No submissions found matching your criteria."
	msgLookupFailed      = "An error occurred while retrieving submissions."
)
