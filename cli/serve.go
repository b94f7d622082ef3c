package cli

import (
	"time"

	"github.com/spf13/cobra"

	"branchscript-editor/api"
	"branchscript-editor/workspace"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/WebSocket editor backend",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	cmd.Flags().StringSlice("watch", nil, "Directories or files to watch (overrides config)")
	cmd.Flags().Bool("debug", false, "Enable gin debug mode")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
	}
	if paths, _ := cmd.Flags().GetStringSlice("watch"); len(paths) > 0 {
		cfg.Watcher.Enabled = true
		cfg.Watcher.Paths = paths
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	store, err := workspace.NewStore(workspace.StoreConfig{
		Analyzer:     analyzer,
		CacheEntries: cfg.Analysis.CacheEntries,
	})
	if err != nil {
		return err
	}
	defer store.Shutdown()

	server, err := api.NewServer(api.ServerConfig{
		Port:         cfg.Server.Port,
		Store:        store,
		EnableCORS:   true,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Debug:        cfg.Server.Debug,
		DebounceTime: time.Duration(cfg.Watcher.DebounceMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	if cfg.Watcher.Enabled {
		if err := server.StartWatcher(cfg.Watcher.Paths); err != nil {
			return err
		}
	}

	return server.Start()
}
