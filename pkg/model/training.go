package model

// Training records are owned by the remote controller. Only the keys the
// dashboard reads are typed; json tags follow the remote object API names.

// Course is a training course.
type Course struct {
	ID          string  `json:"Id"`
	Name        string  `json:"Name"`
	Description string  `json:"Description__c,omitempty"`
	Hours       float64 `json:"Duration_Hours__c,omitempty"`
	Category    string  `json:"Category__c,omitempty"`
}

// RecordRef is a related record reference (`__r` lookups).
type RecordRef struct {
	ID   string `json:"Id,omitempty"`
	Name string `json:"Name,omitempty"`
}

// Session is a scheduled occurrence of a course.
type Session struct {
	ID           string     `json:"Id"`
	Name         string     `json:"Name,omitempty"`
	CourseID     string     `json:"Training_Course__c"`
	Course       *RecordRef `json:"Training_Course__r,omitempty"`
	Instructor   *RecordRef `json:"Instructor__r,omitempty"`
	Date         string     `json:"Session_Date__c,omitempty"`
	StartTime    string     `json:"Start_Time__c,omitempty"`
	EndTime      string     `json:"End_Time__c,omitempty"`
	Location     string     `json:"Location__c,omitempty"`
	MaxAttendees int        `json:"Max_Attendees__c,omitempty"`
	Link         string     `json:"Session_Link__c,omitempty"`
}

// SessionDetail wraps a session with per-user registration details.
type SessionDetail struct {
	Session         *Session `json:"session"`
	IsRegistered    bool     `json:"isRegistered"`
	AvailableSpots  int      `json:"availableSpots"`
	RegisteredCount int      `json:"registeredCount"`
}

// Attendance is the current user's registration for a session.
type Attendance struct {
	ID        string     `json:"Id"`
	Status    string     `json:"Status__c"`
	SessionID string     `json:"Training_Session__c,omitempty"`
	Session   *Session   `json:"Training_Session__r,omitempty"`
	User      *RecordRef `json:"User__r,omitempty"`
}

// Instructor is a user eligible to lead sessions.
type Instructor struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}
