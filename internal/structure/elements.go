package structure

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/masses.yaml
var massesYAML []byte

var (
	massOnce  sync.Once
	massTable map[string]float64
)

// AtomicMass returns the standard atomic weight of the element symbol in
// amu, and whether the symbol is known.
func AtomicMass(symbol string) (float64, bool) {
	massOnce.Do(func() {
		massTable = make(map[string]float64)
		// The table is embedded; a parse failure is a build defect,
		// not a runtime condition.
		if err := yaml.Unmarshal(massesYAML, &massTable); err != nil {
			panic("structure: embedded mass table is invalid: " + err.Error())
		}
	})
	m, ok := massTable[symbol]
	return m, ok
}
