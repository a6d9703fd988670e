package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davril/atomkit/internal/log"
	"github.com/davril/atomkit/internal/potential"
	"github.com/davril/atomkit/internal/relax"
	"github.com/davril/atomkit/internal/structure"
)

var relaxInfiles []string
var relaxSuffix string
var relaxOutfile string
var relaxFmax float64
var relaxMaxSteps int

var relaxCmd = &cobra.Command{
	Use:   "relax",
	Short: "Relax crystal structures.",
	Long: `Relax reads one or more structure files, minimizes the site positions
against the built-in potential, and writes the relaxed structures. Without
-s or -o the result is printed to stdout.`,
	RunE: runRelax,
}

func runRelax(cmd *cobra.Command, args []string) error {
	pot, err := potential.NewLennardJones()
	if err != nil {
		return err
	}

	relaxer := relax.New(pot, relax.Options{
		Fmax:     viper.GetFloat64("relax.fmax"),
		MaxSteps: viper.GetInt("relax.max_steps"),
	})

	for _, fn := range relaxInfiles {
		s, err := structure.Read(fn)
		if err != nil {
			return err
		}

		if viper.GetBool("verbose") {
			fmt.Println("Starting structure")
			fmt.Println(s)
			fmt.Println("Relaxing...")
		}

		result, err := relaxer.Relax(s)
		if err != nil {
			return fmt.Errorf("relax %s: %w", fn, err)
		}
		if !result.Converged {
			log.Logger.Warn().Str("file", fn).Int("steps", result.Steps).
				Float64("fmax", result.Fmax).Msg("Relaxation did not converge.")
		}
		log.Logger.Info().Str("file", fn).Int("steps", result.Steps).
			Float64("energy_ev", result.Energy).Float64("fmax", result.Fmax).
			Msg("Relaxation finished.")

		switch {
		case relaxSuffix != "":
			outfn := suffixedPath(fn, relaxSuffix)
			if err := result.FinalStructure.Write(outfn); err != nil {
				return err
			}
			fmt.Printf("Structure written to %s!\n", outfn)
		case relaxOutfile != "":
			if err := result.FinalStructure.Write(relaxOutfile); err != nil {
				return err
			}
			fmt.Printf("Structure written to %s!\n", relaxOutfile)
		default:
			fmt.Println("Final structure")
			fmt.Println(result.FinalStructure)
		}
	}

	return nil
}

// suffixedPath inserts suffix between the base name and the extension:
// dir/POSCAR.vasp + _relax -> dir/POSCAR_relax.vasp.
func suffixedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func init() {
	rootCmd.AddCommand(relaxCmd)

	relaxCmd.Flags().StringSliceVarP(&relaxInfiles, "infile", "i", nil, "Input file(s) containing structures (POSCAR or extended XYZ; format auto-detected).")
	relaxCmd.MarkFlagRequired("infile")

	relaxCmd.Flags().StringVarP(&relaxSuffix, "suffix", "s", "", "Suffix to be added to input file names for relaxed structures. E.g., _relax.")
	relaxCmd.Flags().StringVarP(&relaxOutfile, "outfile", "o", "", "Output filename.")
	relaxCmd.MarkFlagsMutuallyExclusive("suffix", "outfile")

	relaxCmd.Flags().Float64Var(&relaxFmax, "fmax", 0.1, "Force convergence threshold in eV/Å.")
	relaxCmd.Flags().IntVar(&relaxMaxSteps, "max-steps", 500, "Maximum number of optimizer steps.")
	viper.BindPFlag("relax.fmax", relaxCmd.Flags().Lookup("fmax"))
	viper.BindPFlag("relax.max_steps", relaxCmd.Flags().Lookup("max-steps"))
}
