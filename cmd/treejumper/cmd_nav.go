package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/treejumper/framework/ast"
)

type languageInfo struct {
	Language   ast.Language `json:"language"`
	Name       string       `json:"name"`
	Aliases    []string     `json:"aliases"`
	Extensions []string     `json:"extensions"`
	Kinds      []ast.Kind   `json:"kinds"`
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List supported languages with their aliases and extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []languageInfo
			for _, lang := range ast.SupportedLanguages() {
				info := languageInfo{
					Language:   lang,
					Name:       lang.DisplayName(),
					Aliases:    lang.Aliases(),
					Extensions: lang.Extensions(),
				}
				if kinds, ok := resolvedCfg.Parser.Kinds[lang]; ok {
					info.Kinds = kinds
				} else if grammar, ok := ast.GrammarFor(lang); ok {
					info.Kinds = grammar.Kinds
				}
				infos = append(infos, info)
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return writeJSON(out, infos)
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%-7s %-28s .%s\n", info.Name,
					strings.Join(info.Aliases, ", "),
					strings.Join(info.Extensions, " ."))
			}
			return nil
		},
	}
}

func newOutlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline FILE",
		Short: "Print every navigable construct in a file, in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNodes(cmd.OutOrStdout(), file.Nav.Nodes())
		},
	}
}

func newAtCmd() *cobra.Command {
	var innermost bool
	cmd := &cobra.Command{
		Use:   "at FILE LINE",
		Short: "Print the constructs that enclose a 1-based line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}
			file, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if innermost {
				node, ok := file.Nav.Innermost(line)
				return printOptional(out, node, ok, fmt.Sprintf("no construct encloses line %s", args[1]))
			}
			nodes := file.Nav.Containing(line)
			if len(nodes) == 0 && !flagJSON {
				fmt.Fprintf(out, "no construct encloses line %s\n", args[1])
				return nil
			}
			return printNodes(out, nodes)
		},
	}
	cmd.Flags().BoolVar(&innermost, "innermost", false, "Only print the narrowest enclosing construct")
	return cmd
}

func newStepCmd() *cobra.Command {
	var from string
	var count int
	var backward bool
	cmd := &cobra.Command{
		Use:   "step FILE",
		Short: "Walk construct by construct from a starting line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return errors.New("--count must not be negative")
			}
			file, err := openFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			nav := file.Nav
			if from != "" {
				line, err := parseLine(from)
				if err != nil {
					return err
				}
				if _, ok := nav.Seek(line); !ok {
					return printNodes(cmd.OutOrStdout(), nil)
				}
			} else if backward {
				nav.Last()
			}
			start, ok := nav.Current()
			if !ok {
				return printNodes(cmd.OutOrStdout(), nil)
			}
			visited := []ast.Node{start}
			step := nav.Next
			if backward {
				step = nav.Previous
			}
			for i := 0; i < count; i++ {
				node, ok := step()
				if !ok {
					break
				}
				visited = append(visited, node)
			}
			return printNodes(cmd.OutOrStdout(), visited)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "1-based line to start from (default: first construct, or last with --backward)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of steps to take")
	cmd.Flags().BoolVar(&backward, "backward", false, "Step towards the start of the file")
	return cmd
}
