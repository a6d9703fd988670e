// Package units defines the internal unit system: lengths in Å, time in fs,
// mass in amu, energy in eV, temperature in K.
package units

const (
	// Boltzmann constant in eV/K.
	KB = 8.617333262e-5

	// ForceOverMass converts (eV/Å)/amu into Å/fs².
	ForceOverMass = 9.64853329e-3

	// Kinetic converts amu·(Å/fs)² into eV.
	Kinetic = 103.642692
)
