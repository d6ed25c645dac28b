package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/covercheck/internal/vessels"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNoMatch is returned by "vessels check" when the name is not approved
var ErrNoMatch = errors.New("vessel not on the approved list")

var vesselsCmd = &cobra.Command{
	Use:   "vessels",
	Short: "Inspect the approved vessel list",
}

var vesselsCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Check whether a vessel name is approved",
	Long: `Check applies the same matching the Vessel Name Match rule uses and
prints the approved entry that matched. Exits 1 when nothing matches.

Example:
  covercheck vessels check "mv  neptune"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVesselsCheck,
}

var vesselsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the approved vessel names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := vessels.Load(viper.GetString("vessels.path"))
		if err != nil {
			return err
		}
		for _, name := range list.Sorted() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vesselsCmd)
	vesselsCmd.AddCommand(vesselsCheckCmd)
	vesselsCmd.AddCommand(vesselsListCmd)
}

func runVesselsCheck(cmd *cobra.Command, args []string) error {
	path := viper.GetString("vessels.path")
	list, err := vessels.Load(path)
	if err != nil {
		return err
	}

	name := strings.Join(args, " ")
	out := cmd.OutOrStdout()
	if entry, ok := list.Lookup(name); ok {
		fmt.Fprintf(out, "✓ %q matches approved vessel %q\n", name, entry)
		fmt.Fprintf(out, "  list:   %s (%d vessels)\n", path, list.Len())
		fmt.Fprintf(out, "  policy: %s\n", vessels.MatchPolicy)
		return nil
	}

	fmt.Fprintf(out, "✗ %q is not on the approved list\n", name)
	fmt.Fprintf(out, "  list:   %s (%d vessels)\n", path, list.Len())
	fmt.Fprintf(out, "  policy: %s\n", vessels.MatchPolicy)
	return fmt.Errorf("%w: %q", ErrNoMatch, name)
}
