package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/remote"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var categoryFlags []string
	var list bool
	var replace bool
	var refresh bool

	cmd := &cobra.Command{
		Use:   "fetch <table id|name>",
		Short: "Match and download media from the remote archive",
		Long: `Probe the remote archive for media belonging to one catalog table. Matching
is by name similarity, so differing extensions and trailing category suffixes
on the remote side still match. The best candidate per category is
downloaded; --list shows every candidate without downloading.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				record, err := resolveRecord(signalCtx, store, args[0])
				if err != nil {
					return err
				}

				categories := make([]catalog.MediaCategory, 0, len(categoryFlags))
				for _, value := range categoryFlags {
					category, err := media.ParseCategory(value)
					if err != nil {
						return err
					}
					categories = append(categories, category)
				}

				source := remote.NewFTPSource(cfg.Remote, logger)
				defer source.Close()

				ttl := time.Duration(cfg.Remote.CacheTTLHours) * time.Hour
				lister := remote.NewCachedLister(source, store, ttl, logger)
				candidates, err := remote.NewMatcher(lister, cfg, logger).FindCandidates(signalCtx, record, categories, refresh)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if list {
					if ctx.jsonOutput() {
						return writeJSON(cmd, candidates)
					}
					if len(candidates) == 0 {
						fmt.Fprintf(out, "No remote matches for %s\n", record.CanonicalTitle())
						return nil
					}
					rows := make([][]string, 0, len(candidates))
					for _, cand := range candidates {
						rows = append(rows, []string{string(cand.Category), cand.Name, fmt.Sprintf("%.1f%%", cand.Similarity*100)})
					}
					fmt.Fprintln(out, renderTable([]string{"Category", "File", "Match"}, rows, 2))
					return nil
				}

				if len(candidates) == 0 {
					fmt.Fprintf(out, "No remote matches for %s\n", record.CanonicalTitle())
					return nil
				}

				selected := bestPerCategory(candidates)
				fetcher := remote.NewFetcher(source, store, media.NewLayout(cfg.Paths.MediaDir), logger)
				opts := remote.FetchOptions{
					Replace:  replace,
					Progress: !ctx.jsonOutput() && shouldColorize(cmd.ErrOrStderr()),
				}

				results := make([]*remote.FetchResult, 0, len(selected))
				failed := 0
				for _, cand := range selected {
					res, err := fetcher.Fetch(signalCtx, record, cand, opts)
					if err != nil {
						if errors.Is(err, context.Canceled) {
							return err
						}
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "fetch %s/%s: %v\n", cand.Category, cand.Name, err)
						continue
					}
					results = append(results, res)
				}

				if ctx.jsonOutput() {
					if err := writeJSON(cmd, results); err != nil {
						return err
					}
				} else {
					for _, res := range results {
						if res.Skipped {
							fmt.Fprintf(out, "skipped %s/%s: %s\n", res.Category, res.Name, res.Reason)
						} else {
							fmt.Fprintf(out, "fetched %s/%s -> %s\n", res.Category, res.Name, res.Path)
						}
					}
				}

				if failed > 0 {
					return fmt.Errorf("%d of %d downloads failed", failed, len(selected))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&categoryFlags, "category", nil, "Media category to fetch (repeatable; default all)")
	cmd.Flags().BoolVar(&list, "list", false, "List matching remote files without downloading")
	cmd.Flags().BoolVar(&replace, "replace", false, "Download even when the category already has a local file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cached remote listings")
	return cmd
}

// resolveRecord accepts a numeric catalog id or a name fragment. A fragment
// that matches several tables is an error listing the ids, not a guess.
func resolveRecord(ctx context.Context, store *catalog.Store, arg string) (*catalog.Record, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, errors.New("table id or name is required")
	}

	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		record, err := store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("no table with id %d", id)
		}
		return record, nil
	}

	matches, err := store.SearchByName(ctx, arg)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no table matches %q", arg)
	case 1:
		return matches[0], nil
	}
	for _, match := range matches {
		if strings.EqualFold(match.Name, arg) {
			return match, nil
		}
	}
	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		lines = append(lines, fmt.Sprintf("%d: %s", match.ID, match.CanonicalTitle()))
	}
	return nil, fmt.Errorf("%q matches %d tables; use an id:\n  %s", arg, len(matches), strings.Join(lines, "\n  "))
}

// bestPerCategory keeps the highest-similarity candidate of each category,
// first-listed winning ties, so one fetch pass writes at most one file per
// category destination.
func bestPerCategory(candidates []remote.Candidate) []remote.Candidate {
	best := make(map[catalog.MediaCategory]remote.Candidate)
	order := make([]catalog.MediaCategory, 0, len(candidates))
	for _, cand := range candidates {
		current, ok := best[cand.Category]
		if !ok {
			best[cand.Category] = cand
			order = append(order, cand.Category)
			continue
		}
		if cand.Similarity > current.Similarity {
			best[cand.Category] = cand
		}
	}
	selected := make([]remote.Candidate, 0, len(order))
	for _, category := range order {
		selected = append(selected, best[category])
	}
	return selected
}
