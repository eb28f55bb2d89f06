// Package models defines the host data types shared by nodes, credentials and executions.
package models

// NodeConnectionMain is the single data connection used by regular nodes.
const NodeConnectionMain = "main"

// Property types understood by the host editor.
const (
	PropertyTypeString     = "string"
	PropertyTypeBoolean    = "boolean"
	PropertyTypeNumber     = "number"
	PropertyTypeOptions    = "options"
	PropertyTypeCollection = "collection"
	PropertyTypeNotice     = "notice"
)

// NodeDescription is what a node exposes to the host: identity, connections and parameters.
type NodeDescription struct {
	DisplayName  string                  `json:"displayName"`
	Name         string                  `json:"name"`
	Icon         string                  `json:"icon,omitempty"`
	Group        []string                `json:"group"`
	Version      int                     `json:"version"`
	Subtitle     string                  `json:"subtitle,omitempty"`
	Description  string                  `json:"description"`
	Defaults     NodeDefaults            `json:"defaults"`
	UsableAsTool bool                    `json:"usableAsTool"`
	Inputs       []string                `json:"inputs"`
	Outputs      []string                `json:"outputs"`
	Credentials  []CredentialRequirement `json:"credentials,omitempty"`
	Properties   []NodeProperty          `json:"properties"`
}

// NodeDefaults holds editor defaults for new node instances.
type NodeDefaults struct {
	Name string `json:"name"`
}

// CredentialRequirement names a credential type a node needs.
type CredentialRequirement struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// NodeProperty describes one configurable parameter.
// Options is used by "options" properties, Values by "collection" properties.
type NodeProperty struct {
	DisplayName string           `json:"displayName"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Default     any              `json:"default"`
	Description string           `json:"description,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required,omitempty"`
	TypeOptions map[string]any   `json:"typeOptions,omitempty"`
	Options     []PropertyOption `json:"options,omitempty"`
	Values      []NodeProperty   `json:"values,omitempty"`
}

// PropertyOption is one selectable value of an "options" property.
type PropertyOption struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Property returns the top-level property with the given name.
func (d NodeDescription) Property(name string) (NodeProperty, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return NodeProperty{}, false
}
