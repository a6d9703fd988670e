package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davril/atomkit/internal/log"
	"github.com/davril/atomkit/internal/md"
	"github.com/davril/atomkit/internal/potential"
	"github.com/davril/atomkit/internal/structure"
)

var mdInfiles []string
var mdTemp float64
var mdEnsemble string
var mdTimestep float64
var mdTrajectory string
var mdLogfile string
var mdLogInterval int
var mdNsteps int

var mdCmd = &cobra.Command{
	Use:   "md",
	Short: "Run molecular dynamics.",
	Long: `Md reads one or more structure files and propagates each with
velocity-Verlet dynamics in the requested ensemble, writing an extended-XYZ
trajectory and a thermodynamic log.`,
	RunE: runMD,
}

func runMD(cmd *cobra.Command, args []string) error {
	pot, err := potential.NewLennardJones()
	if err != nil {
		return err
	}

	for _, fn := range mdInfiles {
		s, err := structure.Read(fn)
		if err != nil {
			return err
		}

		if viper.GetBool("verbose") {
			fmt.Println("Starting structure")
			fmt.Println(s)
			fmt.Println("Running MD...")
		}

		driver, err := md.New(s, pot, md.Params{
			Temperature: mdTemp,
			Ensemble:    mdEnsemble,
			Timestep:    viper.GetFloat64("md.timestep"),
			Trajectory:  viper.GetString("md.trajectory"),
			Logfile:     viper.GetString("md.logfile"),
			LogInterval: viper.GetInt("md.loginterval"),
		})
		if err != nil {
			return fmt.Errorf("md %s: %w", fn, err)
		}

		if err := driver.Run(mdNsteps); err != nil {
			return fmt.Errorf("md %s: %w", fn, err)
		}

		log.Logger.Info().Str("file", fn).Int("steps", mdNsteps).
			Str("trajectory", viper.GetString("md.trajectory")).
			Str("logfile", viper.GetString("md.logfile")).
			Msg("MD run finished.")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(mdCmd)

	mdCmd.Flags().StringSliceVarP(&mdInfiles, "infile", "i", nil, "Input file(s) containing structures (POSCAR or extended XYZ; format auto-detected).")
	mdCmd.MarkFlagRequired("infile")

	mdCmd.Flags().Float64VarP(&mdTemp, "temp", "t", 0, "Temperature of the simulation in K.")
	mdCmd.MarkFlagRequired("temp")

	mdCmd.Flags().StringVarP(&mdEnsemble, "ensemble", "e", "", "Ensemble of the simulation (nve or nvt).")
	mdCmd.MarkFlagRequired("ensemble")

	mdCmd.Flags().IntVarP(&mdNsteps, "nsteps", "n", 0, "Number of steps of the simulation.")
	mdCmd.MarkFlagRequired("nsteps")

	mdCmd.Flags().Float64Var(&mdTimestep, "timestep", 2.0, "Timestep of the simulation in fs.")
	mdCmd.Flags().StringVar(&mdTrajectory, "traj", "md.traj", "Trajectory file of the simulation (extended-XYZ frames).")
	mdCmd.Flags().StringVar(&mdLogfile, "log", "md.log", "Log file of the simulation.")
	mdCmd.Flags().IntVar(&mdLogInterval, "loginterval", 100, "Log interval of the simulation.")
	viper.BindPFlag("md.timestep", mdCmd.Flags().Lookup("timestep"))
	viper.BindPFlag("md.trajectory", mdCmd.Flags().Lookup("traj"))
	viper.BindPFlag("md.logfile", mdCmd.Flags().Lookup("log"))
	viper.BindPFlag("md.loginterval", mdCmd.Flags().Lookup("loginterval"))
}
