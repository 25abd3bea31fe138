package bus

// Directive is a typed unit of work dispatched through the handler
// registry, produced from an Impulse by ToDirectives.
type Directive struct {
	Type    string
	Payload map[string]any
}

// New constructs a Directive with the given type name and payload.
func New(typeName string, payload map[string]any) Directive {
	return Directive{Type: typeName, Payload: payload}
}
