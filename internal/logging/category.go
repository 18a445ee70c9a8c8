package logging

import "strings"

// LoaderName is the context of every built-in category.
const LoaderName = "MoltenexLoader"

// CategorySeparator joins a category's context and name parts.
const CategorySeparator = "/"

// Category groups log records by subsystem.
type Category struct {
	Context string
	Name    string
}

// Built-in categories.
var (
	CategoryGeneral      = NewCategory()
	CategoryClassPath    = NewCategory("ClassPath")
	CategoryDiscovery    = NewCategory("Discovery")
	CategoryEntrypoint   = NewCategory("Entrypoint")
	CategoryGamePatch    = NewCategory("GamePatch")
	CategoryGameProvider = NewCategory("GameProvider")
	CategoryKnot         = NewCategory("Knot")
	CategoryLog          = NewCategory("Log")
	CategoryConfig       = NewCategory("Config")
	CategoryTest         = NewCategory("Test")
)

// NewCategory returns a loader category whose name is names joined with
// CategorySeparator.
func NewCategory(names ...string) Category {
	return NewCustomCategory(LoaderName, names...)
}

// NewCustomCategory returns a category under an arbitrary context.
func NewCustomCategory(context string, names ...string) Category {
	return Category{Context: context, Name: strings.Join(names, CategorySeparator)}
}

// String returns context/name, or the bare context for an unnamed category.
func (c Category) String() string {
	if c.Name == "" {
		return c.Context
	}
	return c.Context + CategorySeparator + c.Name
}
