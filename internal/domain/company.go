package domain

// CompanyProfile is the result of a company research lookup. Confidence is 0-100.
type CompanyProfile struct {
	CompanyName   string   `json:"company_name"`
	Domain        string   `json:"domain,omitempty"`
	EmailPattern  string   `json:"email_pattern,omitempty"`
	EmailExamples []string `json:"email_examples,omitempty"`
	Confidence    int      `json:"confidence"`
	Source        string   `json:"source"`
	Note          string   `json:"note,omitempty"`
}
