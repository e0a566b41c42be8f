package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/treejumper/framework/ast"
)

func newIndexCmd() *cobra.Command {
	var vacuum bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Parse every supported file in the workspace into the SQLite index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeFn, err := newManager(true)
			if err != nil {
				return err
			}
			defer closeFn()
			report, err := manager.IndexWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			if vacuum {
				if err := manager.Store().Vacuum(); err != nil {
					return err
				}
			}
			stats, err := manager.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return writeJSON(out, map[string]interface{}{
					"files":             report.Files,
					"indexed":           report.Indexed,
					"failed":            report.Failed,
					"pruned":            report.Pruned,
					"total_nodes":       stats.TotalNodes,
					"files_by_language": stats.FilesByLanguage,
					"nodes_by_kind":     stats.NodesByKind,
					"database_size":     stats.DatabaseSize,
				})
			}
			fmt.Fprintf(out, "indexed %d of %d files (%d failed), %d constructs\n",
				report.Indexed, report.Files, report.Failed, stats.TotalNodes)
			if report.Pruned > 0 {
				fmt.Fprintf(out, "pruned %d deleted files\n", report.Pruned)
			}
			langs := make([]string, 0, len(stats.FilesByLanguage))
			for lang := range stats.FilesByLanguage {
				langs = append(langs, string(lang))
			}
			sort.Strings(langs)
			for _, lang := range langs {
				fmt.Fprintf(out, "  %-7s %d files\n", ast.Language(lang).DisplayName(), stats.FilesByLanguage[ast.Language(lang)])
			}
			fmt.Fprintf(out, "index size %d bytes\n", stats.DatabaseSize)
			return nil
		},
	}
	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "Compact the index after updating it")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var kinds []string
	var limit int
	cmd := &cobra.Command{
		Use:   "search PATTERN",
		Short: "Find indexed constructs by name (* and ? are wildcards)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ast.NodeQuery{NamePattern: likePattern(args[0]), Limit: limit}
			for _, k := range kinds {
				query.Kinds = append(query.Kinds, ast.Kind(k))
			}
			if flagLang != "" {
				lang, err := ast.ResolveLanguage(flagLang)
				if err != nil {
					return err
				}
				query.Languages = []ast.Language{lang}
			}
			manager, closeFn, err := newManager(true)
			if err != nil {
				return err
			}
			defer closeFn()
			results, err := manager.Search(query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				if results == nil {
					results = []ast.IndexedNode{}
				}
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "no matches (run `treejumper index` first?)")
				return nil
			}
			for _, r := range results {
				start, end := r.Node.LineSpan()
				rel, err := filepath.Rel(flagWorkspace, r.Path)
				if err != nil {
					rel = r.Path
				}
				fmt.Fprintf(out, "%s:%d-%d %s\n", rel, start+1, end+1, r.Node.Label())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict to node kinds (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results (0 for all)")
	return cmd
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern turns a shell-style pattern into SQL LIKE syntax. Literal LIKE
// metacharacters are escaped with a backslash. Patterns without wildcards
// match as substrings.
func likePattern(pattern string) string {
	escaped := likeEscaper.Replace(pattern)
	if !strings.ContainsAny(pattern, "*?") {
		return "%" + escaped + "%"
	}
	return strings.NewReplacer("*", "%", "?", "_").Replace(escaped)
}
