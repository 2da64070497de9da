package model

import "fmt"

// ValidateDocument checks the enum and version fields of a document when they
// are present. Documents are schemaless beyond these invariants; absent fields
// are not required here.
func ValidateDocument(c Collection, doc Document) error {
	switch c {
	case CollectionMessages:
		if v, ok := stringField(doc, "type"); ok {
			if !MessageType(v).Valid() {
				return fmt.Errorf("invalid message type %q", v)
			}
		}
	case CollectionWorkflows:
		if v, ok := stringField(doc, "status"); ok {
			if !WorkflowStatus(v).Valid() {
				return fmt.Errorf("invalid workflow status %q", v)
			}
		}
		if v, ok := stringField(doc, "version"); ok {
			if !ValidSemver(v) {
				return fmt.Errorf("invalid workflow version %q: must be semantic (e.g. 1.0.0)", v)
			}
		}
	case CollectionAgents:
		if v, ok := stringField(doc, "type"); ok {
			if !AgentType(v).Valid() {
				return fmt.Errorf("invalid agent type %q", v)
			}
		}
		if v, ok := stringField(doc, "status"); ok {
			if !AgentStatus(v).Valid() {
				return fmt.Errorf("invalid agent status %q", v)
			}
		}
		if v, ok := stringField(doc, "version"); ok {
			if !ValidSemver(v) {
				return fmt.Errorf("invalid agent version %q: must be semantic (e.g. 1.0.0)", v)
			}
		}
	}
	return nil
}

func stringField(doc Document, key string) (string, bool) {
	raw, ok := doc[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
