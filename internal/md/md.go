// Package md runs velocity-Verlet molecular dynamics in the NVE and NVT
// ensembles.
package md

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/davril/atomkit/internal/potential"
	"github.com/davril/atomkit/internal/structure"
	"github.com/davril/atomkit/internal/units"
)

// Ensembles supported by Run.
const (
	EnsembleNVE = "nve"
	EnsembleNVT = "nvt"
)

// Berendsen time constant in units of the timestep.
const berendsenTauFactor = 100

// Params configure one dynamics run.
type Params struct {
	Temperature float64 // K
	Ensemble    string  // "nve" or "nvt"
	Timestep    float64 // fs
	Trajectory  string  // output path, extended-XYZ frames
	Logfile     string  // output path, thermodynamic log
	LogInterval int     // steps between log/trajectory records
	Seed        uint64  // velocity sampling seed; 0 picks a fixed default
}

// MolecularDynamics propagates one structure. It is not safe for
// concurrent use; the CLI runs files strictly in sequence.
type MolecularDynamics struct {
	s      *structure.Structure
	pot    potential.Potential
	params Params

	masses []float64
	vel    [][3]float64
	forces [][3]float64
	epot   float64
	time   float64 // fs
}

// New validates the parameters, samples Maxwell-Boltzmann velocities when
// the structure carries none, and evaluates the initial forces.
func New(s *structure.Structure, pot potential.Potential, params Params) (*MolecularDynamics, error) {
	ensemble := strings.ToLower(params.Ensemble)
	if ensemble != EnsembleNVE && ensemble != EnsembleNVT {
		return nil, fmt.Errorf("md: unknown ensemble %q (want %q or %q)", params.Ensemble, EnsembleNVE, EnsembleNVT)
	}
	params.Ensemble = ensemble

	if params.Timestep <= 0 {
		return nil, fmt.Errorf("md: timestep must be positive, got %g", params.Timestep)
	}
	if params.Temperature < 0 {
		return nil, fmt.Errorf("md: temperature must not be negative, got %g", params.Temperature)
	}
	if params.LogInterval <= 0 {
		return nil, fmt.Errorf("md: log interval must be positive, got %d", params.LogInterval)
	}
	if s.NumSites() == 0 {
		return nil, fmt.Errorf("md: structure has no sites")
	}

	masses, err := s.Masses()
	if err != nil {
		return nil, fmt.Errorf("md: %w", err)
	}

	md := &MolecularDynamics{
		s:      s.Copy(),
		pot:    pot,
		params: params,
		masses: masses,
	}

	if md.s.Velocities != nil {
		md.vel = md.s.Velocities
	} else {
		md.vel = sampleVelocities(masses, params.Temperature, params.Seed)
		md.s.Velocities = md.vel
	}

	md.epot, md.forces, err = pot.Compute(md.s)
	if err != nil {
		return nil, fmt.Errorf("md: initial forces: %w", err)
	}
	return md, nil
}

// sampleVelocities draws Maxwell-Boltzmann velocities at temperature, with
// the center-of-mass drift removed.
func sampleVelocities(masses []float64, temperature float64, seed uint64) [][3]float64 {
	if seed == 0 {
		seed = 42
	}
	src := rand.NewSource(seed)

	vel := make([][3]float64, len(masses))
	for i, m := range masses {
		// σ_v in Å/fs for one cartesian component.
		dist := distuv.Normal{
			Mu:    0,
			Sigma: math.Sqrt(units.KB * temperature / (m * units.Kinetic)),
			Src:   src,
		}
		for k := 0; k < 3; k++ {
			vel[i][k] = dist.Rand()
		}
	}

	var drift [3]float64
	var mTot float64
	for i, m := range masses {
		for k := 0; k < 3; k++ {
			drift[k] += m * vel[i][k]
		}
		mTot += m
	}
	for i := range vel {
		for k := 0; k < 3; k++ {
			vel[i][k] -= drift[k] / mTot
		}
	}
	return vel
}

// KineticEnergy returns the instantaneous kinetic energy in eV.
func (md *MolecularDynamics) KineticEnergy() float64 {
	ekin := 0.0
	for i, m := range md.masses {
		v := md.vel[i]
		ekin += 0.5 * m * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return ekin * units.Kinetic
}

// PotentialEnergy returns the last evaluated potential energy in eV.
func (md *MolecularDynamics) PotentialEnergy() float64 { return md.epot }

// Temperature returns the instantaneous kinetic temperature in K.
func (md *MolecularDynamics) Temperature() float64 {
	n := md.s.NumSites()
	return 2 * md.KineticEnergy() / (3 * float64(n) * units.KB)
}

// Structure exposes the propagated structure (positions and velocities are
// updated in place as the run advances).
func (md *MolecularDynamics) Structure() *structure.Structure { return md.s }

// Run propagates the system for steps timesteps, writing the trajectory and
// the thermodynamic log at the configured interval (step 0 included).
func (md *MolecularDynamics) Run(steps int) error {
	if steps < 0 {
		return fmt.Errorf("md: step count must not be negative, got %d", steps)
	}

	trajF, err := os.Create(md.params.Trajectory)
	if err != nil {
		return fmt.Errorf("md: create trajectory: %w", err)
	}
	defer trajF.Close()
	traj := bufio.NewWriter(trajF)

	logF, err := os.Create(md.params.Logfile)
	if err != nil {
		return fmt.Errorf("md: create log: %w", err)
	}
	defer logF.Close()
	logW := bufio.NewWriter(logF)

	fmt.Fprintf(logW, "%-10s %12s %12s %12s %8s\n", "Time[ps]", "Etot[eV]", "Epot[eV]", "Ekin[eV]", "T[K]")

	if err := md.record(traj, logW, 0); err != nil {
		return err
	}

	dt := md.params.Timestep
	for step := 1; step <= steps; step++ {
		// Velocity Verlet, first half kick plus drift.
		for i, m := range md.masses {
			for k := 0; k < 3; k++ {
				md.vel[i][k] += 0.5 * dt * units.ForceOverMass * md.forces[i][k] / m
				md.s.Coords[i][k] += dt * md.vel[i][k]
			}
		}

		var err error
		md.epot, md.forces, err = md.pot.Compute(md.s)
		if err != nil {
			return fmt.Errorf("md: step %d: %w", step, err)
		}

		for i, m := range md.masses {
			for k := 0; k < 3; k++ {
				md.vel[i][k] += 0.5 * dt * units.ForceOverMass * md.forces[i][k] / m
			}
		}

		if md.params.Ensemble == EnsembleNVT {
			md.berendsenRescale(dt)
		}

		if step%md.params.LogInterval == 0 {
			if err := md.record(traj, logW, step); err != nil {
				return err
			}
		}
	}

	if err := traj.Flush(); err != nil {
		return fmt.Errorf("md: flush trajectory: %w", err)
	}
	if err := logW.Flush(); err != nil {
		return fmt.Errorf("md: flush log: %w", err)
	}
	return nil
}

// berendsenRescale couples the velocities to the target temperature with
// the weak-coupling scheme (τ = 100 dt).
func (md *MolecularDynamics) berendsenRescale(dt float64) {
	t := md.Temperature()
	if t <= 0 {
		return
	}
	lambda2 := 1 + (1.0/berendsenTauFactor)*(md.params.Temperature/t-1)
	if lambda2 < 0 {
		return
	}
	lambda := math.Sqrt(lambda2)
	for i := range md.vel {
		for k := 0; k < 3; k++ {
			md.vel[i][k] *= lambda
		}
	}
}

func (md *MolecularDynamics) record(traj, logW *bufio.Writer, step int) error {
	md.time = float64(step) * md.params.Timestep

	frame := md.s.Copy()
	frame.Comment = fmt.Sprintf("Step=%d Time[fs]=%g", step, md.time)
	if err := structure.WriteXYZ(traj, frame); err != nil {
		return fmt.Errorf("md: write trajectory frame: %w", err)
	}

	ekin := md.KineticEnergy()
	fmt.Fprintf(logW, "%-10.4f %12.6f %12.6f %12.6f %8.1f\n",
		md.time/1000, md.epot+ekin, md.epot, ekin, md.Temperature())
	return nil
}
