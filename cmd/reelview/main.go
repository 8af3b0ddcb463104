package main

import (
	"context"
	stdlog "log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tahmid-dev/reelview/internal/config"
	"github.com/tahmid-dev/reelview/internal/feed"
	"github.com/tahmid-dev/reelview/internal/ingest"
	"github.com/tahmid-dev/reelview/internal/logging"
	"github.com/tahmid-dev/reelview/internal/model"
	"github.com/tahmid-dev/reelview/internal/remote"
	"github.com/tahmid-dev/reelview/internal/share"
	"github.com/tahmid-dev/reelview/internal/store"
	"github.com/tahmid-dev/reelview/internal/ui"
	"github.com/tahmid-dev/reelview/internal/ui/adminview"
	"github.com/tahmid-dev/reelview/internal/ui/feedview"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		stdlog.Fatalf("Failed to create data directory: %v", err)
	}
	if err := logging.Init(dataDir); err != nil {
		stdlog.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Close()

	// Store backend: a hosted real-time database, or local SQLite for
	// offline use. Both sides of the remote.Client interface behave
	// the same from here on.
	var client remote.Client
	switch cfg.Store.Mode {
	case config.ModeRemote:
		client = remote.NewRTDB(cfg.Store.BaseURL, cfg.Store.Auth)
		logging.Info("using remote store", "base", cfg.Store.BaseURL)
	default:
		st, err := store.Open(cfg.Store.LocalDB)
		if err != nil {
			stdlog.Fatalf("Failed to open local store: %v", err)
		}
		defer st.Close()
		client = st
		logging.Info("using local store", "path", cfg.Store.LocalDB)
	}

	actions := feed.NewActions(client, cfg.Author)
	ingester := ingest.New(client)

	// UI command factories. The views never see the store client;
	// every write goes out through one of these and comes back as a
	// message.
	feedCfg := feedview.Config{
		SwipeThreshold: cfg.UI.SwipeThreshold,
		Like: func(reelID string) tea.Cmd {
			return func() tea.Msg {
				v, err := actions.Like(ctx, reelID)
				return feedview.LikeResult{ReelID: reelID, NewValue: v, Err: err}
			}
		},
		Comment: func(reelID, text string) tea.Cmd {
			return func() tea.Msg {
				_, err := actions.Comment(ctx, reelID, text)
				return feedview.CommentResult{ReelID: reelID, Err: err}
			}
		},
		Share: func(title, url string) tea.Cmd {
			return func() tea.Msg {
				err := share.Copy(cfg.UI.ShareCommand, url)
				if err != nil {
					logging.Warn("share failed", "title", title, "err", err)
				}
				return feedview.ShareResult{Title: title, Err: err}
			}
		},
	}

	adminCfg := adminview.Config{
		Submit: func(title, url string) tea.Cmd {
			return func() tea.Msg {
				id, err := ingester.Submit(ctx, title, url)
				return adminview.SubmitResult{ID: id, Err: err}
			}
		},
		Import: func(feedURL string) tea.Cmd {
			return func() tea.Msg {
				created, err := ingester.ImportChannel(ctx, feedURL)
				return adminview.ImportResult{Created: created, Err: err}
			}
		},
	}

	app := ui.NewApp(feedview.New(feedCfg), adminview.New(adminCfg))
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// The synchronizer pushes every feed snapshot into the program as
	// a message; the UI never polls.
	sync := feed.New(client, func(reels []model.Reel) {
		program.Send(feedview.FeedUpdated{Reels: reels})
	})
	if err := sync.Start(ctx); err != nil {
		logging.Error("feed subscription failed", "err", err)
	}
	defer sync.Stop()

	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "err", err)
		stdlog.Fatalf("Error running program: %v", err)
	}
}
