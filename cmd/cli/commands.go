package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/himanishpuri/SwingScan/internal/report"
	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/spf13/cobra"
)

// args decodes positional arguments, keeping the first error.
type args struct {
	vals []string
	err  error
}

func (a *args) strAt(i int) string { return a.vals[i] }

func (a *args) intAt(i int, name string) int {
	v, err := strconv.Atoi(a.vals[i])
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%s: %q is not an integer", name, a.vals[i])
	}
	return v
}

func (a *args) floatAt(i int, name string) float64 {
	v, err := strconv.ParseFloat(a.vals[i], 64)
	if err != nil && a.err == nil {
		a.err = fmt.Errorf("%s: %q is not a number", name, a.vals[i])
	}
	return v
}

// searchFunc runs one search over a loaded swing.
type searchFunc func(sw *swingscan.Swing, a *args) (report.Search, error)

// newSearchCmd builds a command taking SRC followed by search arguments.
// Flag parsing stops at SRC so negative thresholds pass through.
func newSearchCmd(use, short string, nargs int, run searchFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, vals []string) error {
			svc, err := createService()
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			sw, err := svc.LoadSwing(cmd.Context(), vals[0])
			if err != nil {
				return err
			}

			a := &args{vals: vals}
			s, err := run(sw, a)
			if a.err != nil {
				return a.err
			}
			if err != nil {
				return err
			}

			f, _ := report.ParseFormat(output)
			return report.NewWriter(cmd.OutOrStdout(), f, sw.Table()).Search(s)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newAboveCmd() *cobra.Command {
	return newSearchCmd("above SRC CHANNEL BEGIN END THRESHOLD WIN",
		"First run of WIN samples above THRESHOLD in [BEGIN,END)", 6,
		func(sw *swingscan.Swing, a *args) (report.Search, error) {
			ch, begin, end := a.strAt(1), a.intAt(2, "begin"), a.intAt(3, "end")
			th, win := a.floatAt(4, "threshold"), a.intAt(5, "win")
			if a.err != nil {
				return report.Search{}, nil
			}
			res, err := sw.SearchContinuityAboveValue(ch, begin, end, th, win)
			return report.Search{Op: "above", Channels: []string{ch}, Begin: begin, End: end, Result: res}, err
		})
}

func newWithinCmd() *cobra.Command {
	return newSearchCmd("within SRC CHANNEL BEGIN END LO HI WIN",
		"First run of WIN samples strictly inside (LO,HI) in [BEGIN,END)", 7,
		func(sw *swingscan.Swing, a *args) (report.Search, error) {
			ch, begin, end := a.strAt(1), a.intAt(2, "begin"), a.intAt(3, "end")
			lo, hi, win := a.floatAt(4, "lo"), a.floatAt(5, "hi"), a.intAt(6, "win")
			if a.err != nil {
				return report.Search{}, nil
			}
			res, err := sw.SearchContinuityWithinRange(ch, begin, end, lo, hi, win)
			return report.Search{Op: "within", Channels: []string{ch}, Begin: begin, End: end, Result: res}, err
		})
}

func newBackCmd() *cobra.Command {
	return newSearchCmd("back SRC CHANNEL BEGIN END LO HI WIN",
		"Walk back from BEGIN to END for a run of WIN samples inside (LO,HI)", 7,
		func(sw *swingscan.Swing, a *args) (report.Search, error) {
			ch, begin, end := a.strAt(1), a.intAt(2, "begin"), a.intAt(3, "end")
			lo, hi, win := a.floatAt(4, "lo"), a.floatAt(5, "hi"), a.intAt(6, "win")
			if a.err != nil {
				return report.Search{}, nil
			}
			res, err := sw.BackSearchContinuityWithinRange(ch, begin, end, lo, hi, win)
			return report.Search{Op: "back", Channels: []string{ch}, Begin: begin, End: end, Result: res}, err
		})
}

func newTwoCmd() *cobra.Command {
	return newSearchCmd("two SRC CHANNEL1 CHANNEL2 BEGIN END THRESHOLD1 THRESHOLD2 WIN",
		"First run of WIN samples where both channels exceed their thresholds", 8,
		func(sw *swingscan.Swing, a *args) (report.Search, error) {
			ch1, ch2 := a.strAt(1), a.strAt(2)
			begin, end := a.intAt(3, "begin"), a.intAt(4, "end")
			th1, th2, win := a.floatAt(5, "threshold1"), a.floatAt(6, "threshold2"), a.intAt(7, "win")
			if a.err != nil {
				return report.Search{}, nil
			}
			res, err := sw.SearchContinuityAboveValueTwoSignals(ch1, ch2, begin, end, th1, th2, win)
			return report.Search{Op: "two", Channels: []string{ch1, ch2}, Begin: begin, End: end, Result: res}, err
		})
}

func newMultiCmd() *cobra.Command {
	return newSearchCmd("multi SRC CHANNEL BEGIN END LO HI WIN",
		"Every disjoint run of WIN samples inside (LO,HI) in [BEGIN,END)", 7,
		func(sw *swingscan.Swing, a *args) (report.Search, error) {
			ch, begin, end := a.strAt(1), a.intAt(2, "begin"), a.intAt(3, "end")
			lo, hi, win := a.floatAt(4, "lo"), a.floatAt(5, "hi"), a.intAt(6, "win")
			if a.err != nil {
				return report.Search{}, nil
			}
			res, err := sw.SearchMultiContinuityWithinRange(ch, begin, end, lo, hi, win)
			return report.Search{Op: "multi", Channels: []string{ch}, Begin: begin, End: end, Result: res}, err
		})
}

func newPhasesCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "phases SRC",
		Short: "Run a phase profile (default: the built-in swing profile)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, vals []string) error {
			p := profile.Default()
			if profilePath != "" {
				var err error
				if p, err = profile.Load(profilePath); err != nil {
					return err
				}
			}

			svc, err := createService()
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			sw, err := svc.LoadSwing(cmd.Context(), vals[0])
			if err != nil {
				return err
			}
			results, err := profile.Run(sw, p)
			if err != nil {
				return err
			}

			f, _ := report.ParseFormat(output)
			return report.NewWriter(cmd.OutOrStdout(), f, sw.Table()).Phases(p, results)
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "YAML phase profile")
	return cmd
}

func newImportCmd() *cobra.Command {
	var name, device string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a CSV or WAV recording in the recording database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, vals []string) error {
			svc, err := createService()
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			id, err := svc.ImportRecording(cmd.Context(), vals[0], name, device)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Recording name (default: file name without extension)")
	cmd.Flags().StringVar(&device, "device", "", "Recorder that produced the file")
	return cmd
}

func newRecordingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recordings",
		Short: "List recordings in the recording database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, vals []string) error {
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				f, _ := report.ParseFormat(output)
				return report.NewWriter(cmd.OutOrStdout(), f, nil).Recordings([]models.Recording{})
			}

			svc, err := createService()
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			recs, err := svc.ListRecordings(cmd.Context())
			if err != nil {
				return err
			}
			f, _ := report.ParseFormat(output)
			return report.NewWriter(cmd.OutOrStdout(), f, nil).Recordings(recs)
		},
	}
}
