package models

import "testing"

func TestCRMURLBuilders(t *testing.T) {
	SetCRMBaseURL("https://crm.example.com/r")
	defer SetCRMBaseURL("")

	account := CRMAccount{ContactIdentifier: "C1001", AccountIdentifier: "A2002"}
	if got := account.ContactURL(); got != "https://crm.example.com/r/C1001" {
		t.Errorf("ContactURL() = %q", got)
	}
	if got := account.AccountURL(); got != "https://crm.example.com/r/A2002" {
		t.Errorf("AccountURL() = %q", got)
	}

	project := CRMProject{ProjectIdentifier: "P3003"}
	if got := project.ProjectURL(); got != "https://crm.example.com/r/P3003" {
		t.Errorf("ProjectURL() = %q", got)
	}

	quote := CRMQuote{QuoteIdentifier: "Q4004"}
	if got := quote.QuoteURL(); got != "https://crm.example.com/r/Q4004" {
		t.Errorf("QuoteURL() = %q", got)
	}
}
