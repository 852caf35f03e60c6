package convert

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// ComponentSchema is one generated embeddable shape, addressed by a
// composite key (category.name).
type ComponentSchema struct {
	Category    string
	Name        string
	DisplayName string
	Attributes  *orderedmap.OrderedMap[string, *TargetField]
}

// ComponentKey derives the composite component key from a field or type
// name. The derivation is deterministic: identical names always produce
// identical component identities, which is what de-duplicates components.
func ComponentKey(name string) string {
	singular := Singularize(name)
	return fmt.Sprintf("%s.%s", Pluralize(singular), singular)
}

// newComponent creates an empty component schema for the given name.
func newComponent(name string) *ComponentSchema {
	singular := Singularize(name)
	return &ComponentSchema{
		Category:    Pluralize(singular),
		Name:        singular,
		DisplayName: singular,
		Attributes:  orderedmap.NewOrderedMap[string, *TargetField](),
	}
}

// Key returns the composite key of the component.
func (c *ComponentSchema) Key() string {
	return fmt.Sprintf("%s.%s", c.Category, c.Name)
}
