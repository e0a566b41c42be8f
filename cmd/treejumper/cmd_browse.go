package main

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/treejumper/app/browse"
)

func newBrowseCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Open an interactive viewer that jumps between constructs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if from != "" {
				line, err := parseLine(from)
				if err != nil {
					return err
				}
				file.Nav.Seek(line)
			}
			model := browse.New(file.Path, file.Language, file.Source, file.Nav)
			return browse.Run(cmd.Context(), model)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "1-based line to open at")
	return cmd
}
