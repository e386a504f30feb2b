package main

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/mediapack"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <archive.zip|directory>",
		Short: "Import a media pack into the media tree",
		Long: `Import table media from a downloaded pack, either a zip archive or an
already-extracted directory. Each recognized file is proposed against the
closest catalog record; confirmed files are renamed to the record's canonical
name and registered as media references.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				target, err := config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve pack path: %w", err)
				}
				info, err := os.Stat(target)
				if err != nil {
					return fmt.Errorf("inspect pack %q: %w", target, err)
				}

				var entries []mediapack.Entry
				if info.IsDir() {
					entries, err = mediapack.DirEntries(target)
					if err != nil {
						return err
					}
				} else {
					rc, err := zip.OpenReader(target)
					if err != nil {
						return fmt.Errorf("open archive %q: %w", target, err)
					}
					defer rc.Close()
					entries = mediapack.ZipEntries(&rc.Reader)
				}

				out := cmd.OutOrStdout()
				var decide mediapack.DecisionFunc
				switch {
				case dryRun:
					decide = previewDecider(out)
				case yes:
					decide = confirmAllDecider(out)
				default:
					decide = promptDecider(cmd.InOrStdin(), out)
				}

				importer := mediapack.NewImporter(cfg, store, media.NewLayout(cfg.Paths.MediaDir), logger)
				report, err := importer.Run(cmd.Context(), entries, decide)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printImportReport(out, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm every proposal without prompting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Propose matches without importing anything")
	return cmd
}

func proposalLine(p mediapack.Proposal) string {
	return fmt.Sprintf("%s -> %s [%s] (%.0f%% name match)",
		p.Entry.RelativePath, p.Record.CanonicalTitle(), p.Category, p.Similarity*100)
}

func previewDecider(out io.Writer) mediapack.DecisionFunc {
	return func(p mediapack.Proposal) (mediapack.Decision, error) {
		fmt.Fprintf(out, "[dry-run] %s\n", proposalLine(p))
		return mediapack.DecisionSkip, nil
	}
}

func confirmAllDecider(out io.Writer) mediapack.DecisionFunc {
	return func(p mediapack.Proposal) (mediapack.Decision, error) {
		fmt.Fprintln(out, proposalLine(p))
		return mediapack.DecisionConfirm, nil
	}
}

// promptDecider asks on stdin per proposal. Closed stdin counts as
// "skip the rest", so a piped run never hangs.
func promptDecider(in io.Reader, out io.Writer) mediapack.DecisionFunc {
	scanner := bufio.NewScanner(in)
	return func(p mediapack.Proposal) (mediapack.Decision, error) {
		fmt.Fprintln(out, proposalLine(p))
		for {
			fmt.Fprint(out, "  import? [Y/n/s=skip rest] ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return mediapack.DecisionSkipAll, err
				}
				fmt.Fprintln(out)
				return mediapack.DecisionSkipAll, nil
			}
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "", "y", "yes":
				return mediapack.DecisionConfirm, nil
			case "n", "no":
				return mediapack.DecisionSkip, nil
			case "s", "skip":
				return mediapack.DecisionSkipAll, nil
			}
		}
	}
}

func printImportReport(out io.Writer, report *mediapack.Report) {
	fmt.Fprintf(out, "Import: %d proposed, %d imported, %d skipped, %d not examined\n",
		report.Proposed, report.Confirmed, report.Skipped, report.Unscored)
	if len(report.Unrecognized) > 0 {
		fmt.Fprintf(out, "Unrecognized directories: %s\n", strings.Join(report.Unrecognized, ", "))
	}
}
