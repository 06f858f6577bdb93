package intake

import "strings"

// ServiceType discriminates which subset of intake fields a prospective
// client is asked to fill in.
type ServiceType string

const (
	ServiceOnePage        ServiceType = "one-page"
	ServiceMultiPage      ServiceType = "multi-page"
	ServiceAIAugmented    ServiceType = "ai-augmented"
	ServicePartialBackend ServiceType = "partial-backend"
	ServiceFullBackend    ServiceType = "full-backend"
	ServiceAutomationOnly ServiceType = "automation-only"
	ServiceGraphicDesigns ServiceType = "graphic-designs"
	ServiceCollab         ServiceType = "collab"
	ServiceSupport        ServiceType = "support"
)

// DefaultService is used when no query parameter matches.
const DefaultService = ServiceOnePage

var serviceLabels = map[ServiceType]string{
	ServiceOnePage:        "One-Page Landing Website",
	ServiceMultiPage:      "Multi-Page Website",
	ServiceAIAugmented:    "Website + AI Automation",
	ServicePartialBackend: "Website With Partial Backend",
	ServiceFullBackend:    "Website With Full Backend",
	ServiceAutomationOnly: "AI Automation Only",
	ServiceGraphicDesigns: "Graphic Designs & Branding",
	ServiceCollab:         "Collaboration / Partnerships",
	ServiceSupport:        "Customer Support / Existing Project",
}

func (s ServiceType) Valid() bool {
	_, ok := serviceLabels[s]
	return ok
}

func (s ServiceType) Label() string { return serviceLabels[s] }

// ParseServiceParam maps a free-text ?service= query value onto a ServiceType
// by case-insensitive substring matching, first match wins. Unmatched input
// reports false and the caller keeps its current type.
func ParseServiceParam(raw string) (ServiceType, bool) {
	lower := strings.ToLower(raw)
	switch {
	case lower == "":
		return "", false
	case strings.Contains(lower, "one-page"):
		return ServiceOnePage, true
	case strings.Contains(lower, "multi-page"):
		return ServiceMultiPage, true
	case strings.Contains(lower, "ai assistant"), strings.Contains(lower, "ai-augmented"):
		return ServiceAIAugmented, true
	case strings.Contains(lower, "backend"):
		// broad match defaults to the full-backend tier
		return ServiceFullBackend, true
	case strings.Contains(lower, "automation"):
		return ServiceAutomationOnly, true
	case strings.Contains(lower, "graphic"), strings.Contains(lower, "design"), strings.Contains(lower, "artwork"):
		return ServiceGraphicDesigns, true
	}
	return "", false
}

type ControlKind string

const (
	ControlText         ControlKind = "text"
	ControlTextarea     ControlKind = "textarea"
	ControlSelect       ControlKind = "select"
	ControlDate         ControlKind = "date"
	ControlCheckboxList ControlKind = "checkbox-list"
)

// FieldSpec describes one visible form control for a branch.
type FieldSpec struct {
	Name     string      `json:"name"`
	Kind     ControlKind `json:"kind"`
	Required bool        `json:"required,omitempty"`
	Options  []string    `json:"options,omitempty"`
}

// CommonFields returns the shared contact fields visible for the given
// service type. Collab and support inquiries hide the brand/website/referral
// block; collab keeps an organization name.
func CommonFields(st ServiceType) []FieldSpec {
	fields := []FieldSpec{
		{Name: "fullName", Kind: ControlText, Required: true},
		{Name: "email", Kind: ControlText, Required: true},
		{Name: "whatsapp", Kind: ControlText},
	}
	switch st {
	case ServiceCollab:
		fields = append(fields, FieldSpec{Name: "brandName", Kind: ControlText})
	case ServiceSupport:
	default:
		fields = append(fields,
			FieldSpec{Name: "brandName", Kind: ControlText},
			FieldSpec{Name: "website", Kind: ControlText},
			FieldSpec{Name: "referral", Kind: ControlSelect,
				Options: []string{"", "instagram", "tiktok", "referral", "linkedin", "search", "other"}},
		)
	}
	return fields
}

// ServiceFields returns the branch-specific field set. Switching branches is
// a pure function of the service type; field values live in the form state
// superset and survive switches.
func ServiceFields(st ServiceType) []FieldSpec {
	switch st {
	case ServiceOnePage:
		return []FieldSpec{
			{Name: "goal", Kind: ControlText, Required: true},
			{Name: "hasAssets", Kind: ControlSelect, Options: []string{"no", "yes", "partial"}},
			{Name: "copywriting", Kind: ControlSelect, Options: []string{"no", "yes"}},
			{Name: "payment", Kind: ControlText},
			{Name: "deadline", Kind: ControlDate},
			{Name: "budget", Kind: ControlSelect, Options: []string{"", "300-500", "500-1000", "1000+"}},
		}
	case ServiceMultiPage:
		return []FieldSpec{
			{Name: "projectType", Kind: ControlText},
			{Name: "estPages", Kind: ControlCheckboxList,
				Options: []string{"Home", "About", "Services", "Contact", "Blog/News", "Portfolio", "Shop", "FAQ", "Team"}},
			{Name: "ecommerce", Kind: ControlSelect, Options: []string{"no", "yes"}},
			{Name: "domain", Kind: ControlSelect, Options: []string{"no", "yes"}},
			{Name: "sitemap", Kind: ControlTextarea},
			{Name: "deadline", Kind: ControlDate},
			{Name: "budget", Kind: ControlSelect, Options: []string{"", "800-1500", "1500-3000", "3000+"}},
		}
	case ServiceAIAugmented:
		return []FieldSpec{
			{Name: "aiGoal", Kind: ControlTextarea, Required: true},
			{Name: "aiPlacement", Kind: ControlText},
			{Name: "toolsUsed", Kind: ControlText},
			{Name: "bottlenecks", Kind: ControlText},
			{Name: "deadline", Kind: ControlDate},
			{Name: "budget", Kind: ControlSelect, Options: []string{"", "1500-2500", "2500-5000", "5000+"}},
		}
	case ServicePartialBackend, ServiceFullBackend:
		return []FieldSpec{
			{Name: "projectType", Kind: ControlText},
			{Name: "userTypes", Kind: ControlText},
			{Name: "adminCount", Kind: ControlText},
			{Name: "specialFeatures", Kind: ControlTextarea},
			{Name: "deadline", Kind: ControlDate},
			{Name: "budget", Kind: ControlSelect, Options: []string{"", "2000-4000", "4000-8000", "8000+"}},
		}
	case ServiceAutomationOnly:
		return []FieldSpec{
			{Name: "aiGoal", Kind: ControlText, Required: true},
			{Name: "manualProcess", Kind: ControlTextarea},
			{Name: "frequency", Kind: ControlText},
			{Name: "toolsUsed", Kind: ControlText},
			{Name: "deadline", Kind: ControlDate},
			{Name: "budget", Kind: ControlSelect, Options: []string{"", "500-1000", "1000-2500", "2500+"}},
		}
	case ServiceCollab:
		return []FieldSpec{
			{Name: "collabType", Kind: ControlSelect, Options: []string{"", "referral", "white-label", "content", "other"}},
			{Name: "collabBring", Kind: ControlTextarea},
			{Name: "collabExpect", Kind: ControlTextarea},
			{Name: "website", Kind: ControlText},
		}
	case ServiceSupport:
		return []FieldSpec{
			{Name: "existingClient", Kind: ControlSelect, Options: []string{"yes", "no"}},
			{Name: "urgency", Kind: ControlSelect, Options: []string{"Low", "Normal", "High", "Critical"}},
			{Name: "projectName", Kind: ControlText, Required: true},
			{Name: "issueType", Kind: ControlSelect, Options: []string{"bug", "edit", "feature", "billing", "other"}},
			{Name: "issueDesc", Kind: ControlTextarea, Required: true},
		}
	case ServiceGraphicDesigns:
		return []FieldSpec{
			{Name: "designDetails", Kind: ControlTextarea},
			{Name: "toolsUsed", Kind: ControlText},
			{Name: "hasAssets", Kind: ControlSelect, Options: []string{"no", "yes"}},
		}
	}
	return nil
}

// DefaultValues seeds the full union of field keys across every branch.
// Keys are never removed when the service type changes; switching branches
// only changes which keys are displayed and validated.
func DefaultValues() map[string]any {
	return map[string]any{
		"fullName":  "",
		"email":     "",
		"whatsapp":  "",
		"brandName": "",
		"website":   "",
		"referral":  "",
		// service-specific fields
		"goal":            "",
		"hasAssets":       "no",
		"copywriting":     "no",
		"payment":         "no",
		"deadline":        "",
		"budget":          "",
		"projectType":     "",
		"estPages":        []string{},
		"sitemap":         "",
		"domain":          "no",
		"blog":            "no",
		"ecommerce":       "no",
		"specialFeatures": "",
		"aiGoal":          "",
		"aiPlacement":     "",
		"toolsUsed":       "",
		"sensitiveData":   "no",
		"bottlenecks":     "",
		"maintenance":     "no",
		"backendManage":   "",
		"adminCount":      "",
		"adminActions":    "",
		"roles":           "",
		"dbPreference":    "",
		"userTypes":       "",
		"integrations":    "",
		"vision":          "",
		"manualProcess":   "",
		"frequency":       "",
		"newTools":        "yes",
		"collabType":      "",
		"collabBring":     "",
		"collabExpect":    "",
		"existingClient":  "no",
		"projectName":     "",
		"issueType":       "",
		"issueDesc":       "",
		"urgency":         "Normal",
		"designDetails":   "",
	}
}
