// Package zoo is a fixture package the importer tests load: its embedded
// structs become bases of the imported types.
package zoo

import "sync"

// Named carries a display name.
type Named struct {
	Name string `json:"name"`
}

// Describe returns the display name.
func (n Named) Describe() string { return n.Name }

// Animal is any creature with legs.
type Animal struct {
	Named
	Legs int `json:"legs"`
	diet string
}

// Speak returns the animal's sound.
func (a *Animal) Speak() string { return "..." + a.diet }

// Swimmer can dive.
type Swimmer struct {
	Depth int `json:"depth"`
}

// Duck both walks and swims.
type Duck struct {
	Animal
	Swimmer
	sync.Mutex
}

// Pet is an animal with an owner.
type Pet struct {
	*Animal
	Owner string `json:"owner"`
}

// Sound is not a struct and is not imported.
type Sound string
