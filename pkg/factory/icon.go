package factory

import "github.com/modoterra/svcpanel/pkg/core"

// Variant selects the glyph style for a section icon's position within
// the combined status-area icon.
type Variant int

const (
	VariantFirst Variant = iota
	VariantMiddle
	VariantLast
)

func (v Variant) String() string {
	switch v {
	case VariantMiddle:
		return "middle"
	case VariantLast:
		return "last"
	default:
		return "first"
	}
}

// Icon is a section icon in a given variant.
type Icon struct {
	Section core.Section
	Name    string
	Variant Variant
}

// SectionIcon returns the icon for section.
func SectionIcon(section core.Section, variant Variant) Icon {
	return Icon{
		Section: section,
		Name:    "svcpanel-" + string(section) + "-symbolic",
		Variant: variant,
	}
}

// VariantAt returns the variant for position i out of n icons. A lone icon
// uses the first variant.
func VariantAt(i, n int) Variant {
	switch {
	case i == 0:
		return VariantFirst
	case i == n-1:
		return VariantLast
	default:
		return VariantMiddle
	}
}

// StatusIcons composes the status-area icon from the active sections.
func (f *Factory) StatusIcons() []Icon {
	sections := f.ActiveSections()
	icons := make([]Icon, len(sections))
	for i, section := range sections {
		icons[i] = SectionIcon(section, VariantAt(i, len(sections)))
	}
	return icons
}
