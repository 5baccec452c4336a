package cmd

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/earlyedge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load all screens and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		logger := log.New(os.Stderr, "", log.LstdFlags)
		reg, cleanup, err := loadRegistry(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		logger.Printf("Server starting on %s with %d screens", ln.Addr(), len(reg.Modalities()))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(reg, cfg, logger).Run(ctx, ln)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EARLYEDGE_ADDR, default :8000)")
}
