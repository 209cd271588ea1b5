package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kiosk-signage/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the media catalog newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			provider, err := ctx.newProvider(cfg, ctx.newLogger(cfg))
			if err != nil {
				return err
			}

			items := provider.List()
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintf(out, "No media in %s\n", cfg.Media.Dir())
				return nil
			}

			shown := items
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			fmt.Fprintln(out, renderCatalog(shown, time.Now()))
			fmt.Fprintf(out, "%d media file(s) in %s, ordered by %s\n", len(items), cfg.Media.Dir(), provider.Strategy())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n items (0 shows all)")
	return cmd
}

func renderCatalog(items []catalog.MediaItem, now time.Time) string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		modified := "-"
		if it.MtimeMs > 0 {
			modified = humanize.RelTime(time.UnixMilli(int64(it.MtimeMs)), now, "ago", "from now")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.Filename,
			string(it.Kind),
			humanize.Bytes(uint64(max(it.Size, 0))),
			modified,
			strconv.FormatFloat(it.SortKey, 'f', -1, 64),
		})
	}
	return renderTable(
		[]string{"#", "File", "Kind", "Size", "Modified", "Sort key"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	)
}
