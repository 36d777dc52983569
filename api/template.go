package api

// DefaultTemplateName is the canonical empty template seeded into every
// project's templates directory.
const DefaultTemplateName = "empty"

// Placeholder tokens substituted when a node is instantiated from a template.
const (
	PlaceholderTitle       = "{{title}}"
	PlaceholderDescription = "{{description}}"
)

// DefaultTemplate synthesizes the canonical empty template. Each call mints
// a fresh id; callers must not overwrite an existing template file with it.
func DefaultTemplate() (Metadata, string) {
	now := Now()
	meta := Metadata{
		ID:       NewNodeID(),
		Title:    "Empty Node",
		Type:     "template",
		Created:  now,
		Modified: now,
	}
	return meta, "# " + PlaceholderTitle + "\n\n"
}
