package domain

import "fmt"

// Category is the kind of content a mod package carries. Every mod belongs to
// exactly one category.
type Category int

const (
	Textures             Category = iota // .dss texture replacements (Special K injection)
	PlayerModels                         // pl.dtt / pl.dat
	WeaponModels                         // wp.dtt / wp.dat
	WorldModels                          // bg.dtt / bg.dat
	CutsceneReplacements                 // .usm movies
	ReshadePreset                        // shader presets, detected by an add-on detector
)

var categoryNames = [...]string{
	Textures:             "Textures",
	PlayerModels:         "PlayerModels",
	WeaponModels:         "WeaponModels",
	WorldModels:          "WorldModels",
	CutsceneReplacements: "CutsceneReplacements",
	ReshadePreset:        "ReshadePreset",
}

var categoryLabels = [...]string{
	Textures:             "texture pack",
	PlayerModels:         "player model",
	WeaponModels:         "weapon model",
	WorldModels:          "world model",
	CutsceneReplacements: "cutscene replacement",
	ReshadePreset:        "ReShade preset",
}

// Categories returns every category in declaration order
func Categories() []Category {
	return []Category{Textures, PlayerModels, WeaponModels, WorldModels, CutsceneReplacements, ReshadePreset}
}

// Valid reports whether c is one of the declared categories
func (c Category) Valid() bool {
	return c >= Textures && c <= ReshadePreset
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Label returns a human readable description, e.g. "player model"
func (c Category) Label() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryLabels[c]
}

// RequiresFiles reports whether an installed mod of this category must own at
// least one file.
func (c Category) RequiresFiles() bool {
	return c != ReshadePreset
}

// ParseCategory converts a category name (as stored in data.json) back to a Category
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mod type %q", s)
}

// MarshalText implements encoding.TextMarshaler so categories serialize by name
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid mod type %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
