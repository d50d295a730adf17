package tools

import "net/http"

// MethodInternal marks tools handled in-process instead of through the gateway.
const MethodInternal = "INTERNAL"

// Definition is one catalog entry. Endpoint may contain {placeholders}, each
// of which must be listed in PathParams.
type Definition struct {
	Name        string
	Description string
	Schema      string
	Method      string
	Endpoint    string
	PathParams  []string
}

// DefaultCatalog returns every tool the assistant can call, in the order
// they are presented to the model.
func DefaultCatalog() []Definition {
	var defs []Definition
	defs = append(defs, calendarTools()...)
	defs = append(defs, taskTools()...)
	defs = append(defs, emailTools()...)
	defs = append(defs, notifyTools()...)
	defs = append(defs, knowledgeTools()...)
	defs = append(defs, searchTools()...)
	defs = append(defs, storageTools()...)
	defs = append(defs, memoryTools()...)
	return defs
}

const emptySchema = `{"type": "object", "properties": {}}`

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPatch:  true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	MethodInternal:    true,
}
