package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/treejumper/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Speak JSON-RPC on stdin/stdout for editor integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr or a file.
			logOut := os.Stderr
			if resolvedCfg.LogPath != "" {
				if err := os.MkdirAll(filepath.Dir(resolvedCfg.LogPath), 0o755); err != nil {
					return err
				}
				f, err := os.OpenFile(resolvedCfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}
			logger := log.New(logOut, "serve ", log.LstdFlags)
			manager, closeFn, err := newManager(false)
			if err != nil {
				return err
			}
			defer closeFn()
			srv := server.NewNavServer(manager, logger)
			logger.Printf("serving workspace %s", flagWorkspace)
			return srv.Serve(cmd.Context(), server.Stdio(os.Stdin, os.Stdout))
		},
	}
}
