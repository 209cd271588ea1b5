package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"kiosk-signage/internal/display"
	"kiosk-signage/internal/layout"
	"kiosk-signage/internal/rotation"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		feedURL string
		rounds  int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run display rounds against a server's feed and print each layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			log := ctx.newLogger(cfg)

			if feedURL == "" {
				feedURL = "http://localhost:" + cfg.Server.Port + "/api/videos"
			}
			fetcher, err := display.NewHTTPFetcher(feedURL, nil)
			if err != nil {
				return err
			}
			slots, err := layout.ParseSlots(cfg.Display.Slots)
			if err != nil {
				return err
			}
			overflow, err := layout.ParseOverflow(cfg.Display.Overflow)
			if err != nil {
				return err
			}
			policy, err := rotation.ParsePolicy(cfg.Display.Policy)
			if err != nil {
				return err
			}

			rend := newTableRenderer(cmd.OutOrStdout(), rounds)
			runner := display.NewRunner(fetcher, rend, display.Options{
				Slots:    slots,
				Overflow: overflow,
				Policy:   policy,
				Interval: cfg.Display.RefreshInterval(),
			}, log)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runner.Start(runCtx); err != nil {
				return err
			}
			select {
			case <-runCtx.Done():
			case <-rend.done:
			}
			runner.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&feedURL, "url", "", "feed URL (default http://localhost:<port>/api/videos)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "exit after this many rounds (0 runs until interrupted)")
	return cmd
}

// tableRenderer prints each frame as a slot table.
type tableRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	limit  int
	frames int
	done   chan struct{}
	once   sync.Once
}

func newTableRenderer(out io.Writer, limit int) *tableRenderer {
	return &tableRenderer{out: out, limit: limit, done: make(chan struct{})}
}

func (t *tableRenderer) Render(f display.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([][]string, 0, len(f.Slots))
	for _, in := range f.Slots {
		item := in.ID
		if item == "" {
			item = "-"
		}
		rows = append(rows, []string{in.Slot, string(in.Kind), item})
	}
	fmt.Fprintf(t.out, "Round %d: %d usable, %d repeated, centre %s\n", f.Round, f.Available, f.Repeats, f.CenterImage)
	fmt.Fprintln(t.out, renderTable([]string{"Slot", "Kind", "Item"}, rows, nil))

	t.frames++
	if t.limit > 0 && t.frames >= t.limit {
		t.once.Do(func() { close(t.done) })
	}
}

func (t *tableRenderer) Status(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, strings.TrimSpace(s))
}
