package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/errors"
	"github.com/fintrace/insider/resolve"
)

var (
	resolveJSON        bool
	resolveLimit       int
	resolveNoFallback  bool
	resolveDeadline    int
	resolveConcurrency int
)

// ResolveCmd represents the resolve command
var ResolveCmd = &cobra.Command{
	Use:   "resolve NAME",
	Short: "Resolve a person's name to their insider affiliations",
	Long: `Resolve a person's name to the companies where they file as a corporate
insider.

The name can be given in any common form; spelling variants used by the
filing corpus are generated automatically.

Examples:
  insider resolve "Gale Klappa"
  insider resolve "KLAPPA GALE E"
  insider resolve --json "Klappa, Gale"
  insider resolve --limit 500 --no-fallback "Warren Buffett"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolveCommand,
}

func init() {
	ResolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Emit the full result as JSON")
	ResolveCmd.Flags().IntVarP(&resolveLimit, "limit", "l", 0, "Cap the fallback scan to the N largest companies (0 = no cap)")
	ResolveCmd.Flags().BoolVar(&resolveNoFallback, "no-fallback", false, "Skip the exhaustive scan when indexed search finds nothing")
	ResolveCmd.Flags().IntVar(&resolveDeadline, "deadline", 0, "Overall deadline in seconds (0 = configured default)")
	ResolveCmd.Flags().IntVar(&resolveConcurrency, "concurrency", 0, "Fallback scan workers (0 = configured default)")
}

func runResolveCommand(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver, _, err := buildStack()
	if err != nil {
		return errors.Wrap(err, "failed to build resolver")
	}

	opts := configuredOptions(cfg)
	if cmd.Flags().Changed("limit") {
		opts.EntityLimit = resolveLimit
	}
	if resolveNoFallback {
		opts.FallbackOnEmpty = false
	}
	if resolveDeadline > 0 {
		opts.Deadline = time.Duration(resolveDeadline) * time.Second
	}
	if resolveConcurrency > 0 {
		opts.Concurrency = resolveConcurrency
	}

	identity, err := resolver.Resolve(context.Background(), name, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %q", name)
	}

	if resolveJSON {
		return displayIdentityJSON(identity)
	}
	return displayIdentity(identity)
}

func displayIdentityJSON(identity *resolve.ResolvedIdentity) error {
	payload, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	fmt.Println(string(payload))
	return nil
}

func displayIdentity(identity *resolve.ResolvedIdentity) error {
	if !identity.Found() {
		pterm.Warning.Printf("No insider filings found for %q\n", identity.CanonicalName)
		reportCoverageGaps(identity)
		return nil
	}

	pterm.Success.Printf("%s — %d affiliation(s), confidence %.2f\n\n",
		identity.CanonicalName, len(identity.Affiliations), identity.Confidence)

	rows := pterm.TableData{{"Company", "CIK", "Status", "Confidence", "Last filing", "Filed as"}}
	for _, a := range identity.Affiliations {
		rows = append(rows, []string{
			a.Entity.Name,
			a.Entity.CIK,
			string(a.Status),
			fmt.Sprintf("%.2f", a.Confidence),
			a.LastSeen.Format("2006-01-02"),
			a.FilerName,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	reportCoverageGaps(identity)
	return nil
}

// reportCoverageGaps surfaces entities the search could not check, so an
// empty or short answer is not mistaken for a complete one.
func reportCoverageGaps(identity *resolve.ResolvedIdentity) {
	n := len(identity.Diagnostics.EntityErrors)
	if n == 0 {
		return
	}
	pterm.Warning.Printf("%d entit(ies) could not be checked; coverage is partial\n", n)
}
