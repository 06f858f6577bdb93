package intake

import (
	"regexp"
	"strings"
)

// Errors maps field names to human-readable messages. An empty map means
// the payload is valid.
type Errors map[string]string

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the payload against the branch's required-field rules.
// It is a pure function of the payload: same input, same error set.
func Validate(p Payload) Errors {
	e := Errors{}
	if strings.TrimSpace(p.FullName) == "" || len(strings.TrimSpace(p.FullName)) < 2 {
		e["fullName"] = "Please enter your full name."
	}
	if p.Email == "" || !emailRe.MatchString(strings.ToLower(p.Email)) {
		e["email"] = "Please enter a valid email address."
	}

	goal := str(p.Fields, "goal")
	aiGoal := str(p.Fields, "aiGoal")
	switch p.ServiceType {
	case ServiceOnePage, ServiceAIAugmented:
		if goal == "" && aiGoal == "" {
			e["goal"] = "Please provide a short description of your project or goal."
		}
	case ServiceAutomationOnly:
		// the automation branch collects its description under aiGoal but
		// surfaces the error under the shared goal key
		if aiGoal == "" && goal == "" {
			e["goal"] = "Please provide a short description of your project or goal."
		}
	case ServiceSupport:
		if strings.TrimSpace(str(p.Fields, "projectName")) == "" {
			e["projectName"] = "Please enter the project name or website URL."
		}
		if strings.TrimSpace(str(p.Fields, "issueDesc")) == "" {
			e["issueDesc"] = "Please describe the issue or request."
		}
	}
	return e
}
