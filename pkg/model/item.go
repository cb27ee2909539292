package model

// NamespaceItem is the capability namespace every item implicitly provides
// under its own id and version.
const NamespaceItem = "catalog.item"

// Capability is something an item provides.
type Capability struct {
	Namespace string  `yaml:"namespace" json:"namespace"`
	Name      string  `yaml:"name" json:"name"`
	Version   Version `yaml:"version" json:"version"`
}

// Requirement is a dependency on a capability within a version range.
type Requirement struct {
	Namespace string       `yaml:"namespace" json:"namespace"`
	Name      string       `yaml:"name" json:"name"`
	Range     VersionRange `yaml:"range" json:"range"`
	Optional  bool         `yaml:"optional,omitempty" json:"optional,omitempty"`
	Greedy    bool         `yaml:"greedy,omitempty" json:"greedy,omitempty"`
	Filter    string       `yaml:"filter,omitempty" json:"filter,omitempty"`
}

// SatisfiedBy reports whether the capability fulfils the requirement.
func (r Requirement) SatisfiedBy(c Capability) bool {
	return r.Namespace == c.Namespace && r.Name == c.Name && r.Range.Includes(c.Version)
}

// Item is an installable catalog record.
type Item struct {
	ID         string            `yaml:"id" json:"id"`
	Version    Version           `yaml:"version" json:"version"`
	Singleton  bool              `yaml:"singleton,omitempty" json:"singleton,omitempty"`
	Filter     string            `yaml:"filter,omitempty" json:"filter,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Provides   []Capability      `yaml:"provides,omitempty" json:"provides,omitempty"`
	Requires   []Requirement     `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// SelfCapability is the capability an item provides under its own identity.
func (it *Item) SelfCapability() Capability {
	return Capability{Namespace: NamespaceItem, Name: it.ID, Version: it.Version}
}

// ProvidedCapabilities returns the declared capabilities followed by the
// implicit self capability.
func (it *Item) ProvidedCapabilities() []Capability {
	caps := make([]Capability, 0, len(it.Provides)+1)
	caps = append(caps, it.Provides...)
	return append(caps, it.SelfCapability())
}

// Satisfies reports whether any provided capability fulfils r.
func (it *Item) Satisfies(r Requirement) bool {
	for _, c := range it.ProvidedCapabilities() {
		if r.SatisfiedBy(c) {
			return true
		}
	}
	return false
}

// Property returns a property value and whether it was set.
func (it *Item) Property(key string) (string, bool) {
	v, ok := it.Properties[key]
	return v, ok
}

// String formats the item as id/version.
func (it *Item) String() string {
	return it.ID + "/" + it.Version.String()
}

// Versioned is implemented by values that have an identity independent of
// their version. latest groups such values by IdentityKey and keeps the
// greatest VersionOf in each group.
type Versioned interface {
	IdentityKey() string
	VersionOf() Version
}

// IdentityKey implements Versioned.
func (it *Item) IdentityKey() string {
	return it.ID
}

// VersionOf implements Versioned.
func (it *Item) VersionOf() Version {
	return it.Version
}

// IdentityKey implements Versioned.
func (c Capability) IdentityKey() string {
	return c.Namespace + "/" + c.Name
}

// VersionOf implements Versioned.
func (c Capability) VersionOf() Version {
	return c.Version
}
