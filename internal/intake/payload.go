package intake

import (
	"encoding/json"
	"strings"
)

// Payload is the read-only projection submitted to the lead sink. It carries
// the normalized headline fields plus the full superset of form values,
// including keys irrelevant to the selected branch.
type Payload struct {
	ServiceType ServiceType
	FullName    string
	Email       string
	WhatsApp    string
	BrandName   string
	Website     string
	Message     string
	Fields      map[string]any
}

// BuildPayload assembles a Payload from the current form values. Message is
// resolved by a fixed fallback order across the branch description fields.
func BuildPayload(st ServiceType, values map[string]any) Payload {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return Payload{
		ServiceType: st,
		FullName:    str(values, "fullName"),
		Email:       str(values, "email"),
		WhatsApp:    str(values, "whatsapp"),
		BrandName:   str(values, "brandName"),
		Website:     str(values, "website"),
		Message:     fallbackMessage(values),
		Fields:      fields,
	}
}

// fallbackMessage picks the first non-empty description field, in the fixed
// order sitemap, aiGoal, goal, issueDesc.
func fallbackMessage(values map[string]any) string {
	for _, key := range []string{"sitemap", "aiGoal", "goal", "issueDesc"} {
		if v := str(values, key); v != "" {
			return v
		}
	}
	return ""
}

// SubmissionEventProps builds the analytics properties reported with the
// contact_form_submitted event. The message_length chain deliberately skips
// issueDesc, matching the event's original definition.
func SubmissionEventProps(p Payload) map[string]any {
	length := 0
	for _, key := range []string{"sitemap", "aiGoal", "goal"} {
		if v := str(p.Fields, key); v != "" {
			length = len(v)
			break
		}
	}
	return map[string]any{
		"service_type":   string(p.ServiceType),
		"has_phone":      p.WhatsApp != "",
		"message_length": length,
	}
}

func str(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}

// MarshalJSON flattens the payload: the headline fields sit next to every raw
// form value, the way the submission endpoint expects them.
func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+7)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["serviceType"] = p.ServiceType
	out["fullName"] = p.FullName
	out["email"] = p.Email
	out["whatsapp"] = p.WhatsApp
	out["brandName"] = p.BrandName
	out["website"] = p.Website
	out["message"] = p.Message
	return json.Marshal(out)
}

// UnmarshalJSON accepts the same flattened shape. Unknown keys land in
// Fields so stateless submissions keep the full superset.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, _ := raw["serviceType"].(string)
	p.ServiceType = ServiceType(strings.TrimSpace(st))
	p.FullName = str(raw, "fullName")
	p.Email = str(raw, "email")
	p.WhatsApp = str(raw, "whatsapp")
	p.BrandName = str(raw, "brandName")
	p.Website = str(raw, "website")
	p.Message = str(raw, "message")
	delete(raw, "serviceType")
	delete(raw, "message")
	p.Fields = raw
	if p.Message == "" {
		p.Message = fallbackMessage(raw)
	}
	return nil
}
