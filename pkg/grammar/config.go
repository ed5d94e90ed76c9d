package grammar

// Config holds the raw configuration strings of the report form. The combined
// grammar (SectionsAndFields) wins whenever it is non-blank; the remaining
// field lists form the legacy fallback.
type Config struct {
	// SectionsAndFields uses the combined grammar:
	//   "Title - f1;f2, Title2 - f3"
	// where each field is "id:type:label:key:required:width[:extra]".
	SectionsAndFields string `json:"sectionsAndFields" mapstructure:"sections_and_fields"`

	// SectionTitles and SectionIcons are comma separated, matched to sections
	// by position. Titles are only read by the legacy grammar.
	SectionTitles string `json:"sectionTitles" mapstructure:"section_titles"`
	SectionIcons  string `json:"sectionIcons" mapstructure:"section_icons"`

	// Legacy comma separated field groups.
	PrivacyFields       string `json:"privacyFields" mapstructure:"privacy_fields"`
	ContactFields       string `json:"contactFields" mapstructure:"contact_fields"`
	ReportDetailsFields string `json:"reportDetailsFields" mapstructure:"report_details_fields"`
	IncidentFields      string `json:"incidentFields" mapstructure:"incident_fields"`

	// NoticeContent is a comma separated list of "title|content" pairs.
	NoticeContent string `json:"noticeContent" mapstructure:"notice_content"`
}

// Named option sources the default configuration references. Any other name
// may be registered at runtime.
const (
	SourceCategories = "categoryOptions"
	SourceSeverities = "severityOptions"
)

// DefaultConfig returns the stock fraud, waste and abuse reporting form.
func DefaultConfig() Config {
	return Config{
		SectionsAndFields: "Reporting Method - anonymousOption:radio:How would you like to submit this report?:isAnonymous:true:100%:Provide my contact information|false,Submit anonymously|true, " +
			"Contact Information - reporterName:text:Full Name:reporterName:true:50%;reporterEmail:email:Email Address (Optional for anonymous):reporterEmail:false:50%;reporterPhone:tel:Phone Number (Optional):reporterPhone:false:50%;consentToContact:checkbox:I consent to be contacted about this report:consentToContact:false:100%;preferredContactMethod:radio:Preferred Contact Method:preferredContactMethod:false:100%:Email|Email,Phone|Phone,Do Not Contact|Do Not Contact, " +
			"Report Details - category:combobox:Category:category:true:50%:categoryOptions;severity:combobox:Severity:severity:true:50%:severityOptions;reportDetails:textarea:Detailed Description:reportDetails:true:100%:6, " +
			"Incident Information - incidentLocation:text:Incident Location (Optional):incidentLocation:false:50%;incidentDate:date:Incident Date (Optional):incidentDate:false:50%;witnessInfo:textarea:Witness Information (Optional):witnessInfo:false:100%:3",
		SectionIcons:        "utility:identity, utility:contact, utility:record, utility:location, utility:info",
		PrivacyFields:       "anonymousOption:radio:How would you like to submit this report?:isAnonymous:true:100%:Provide my contact information|false,Submit anonymously|true",
		ContactFields:       "reporterName:text:Full Name:reporterName:true:50%,reporterEmail:email:Email Address (Optional for anonymous):reporterEmail:false:50%,reporterPhone:tel:Phone Number (Optional):reporterPhone:false:50%,consentToContact:checkbox:I consent to be contacted about this report:consentToContact:false:100%,preferredContactMethod:radio:Preferred Contact Method:preferredContactMethod:false:100%:Email|Email,Phone|Phone,Do Not Contact|Do Not Contact",
		ReportDetailsFields: "category:combobox:Category:category:true:50%:categoryOptions,severity:combobox:Severity:severity:true:50%:severityOptions,reportDetails:textarea:Detailed Description:reportDetails:true:100%:6",
		IncidentFields:      "incidentLocation:text:Incident Location (Optional):incidentLocation:false:50%,incidentDate:date:Incident Date (Optional):incidentDate:false:50%,witnessInfo:textarea:Witness Information (Optional):witnessInfo:false:100%:3",
		NoticeContent:       "Whistleblower Protection|Federal law prohibits retaliation against employees who report fraud, waste, or abuse. You are protected under the Whistleblower Protection Act.,False Claims|Knowingly submitting false information is prohibited and may subject you to criminal prosecution under federal law.,Follow-up Process|Your report will be reviewed and investigated as appropriate. You will receive updates on the status if you provided contact information.",
	}
}
