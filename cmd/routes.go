package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/maproute/internal/config"
)

func newRoutesCmd() *cobra.Command {
	var (
		docPath string
		topK    int
		fromDB  bool
	)

	routesCmd := &cobra.Command{
		Use:   "routes",
		Short: "List the cheapest routes to a target concept",
		Long: `Loads a mapping document, builds the route tree for its target and lists
the k cheapest routes with their costs and consumed source concepts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if topK < 1 {
				topK = config.Get().Resolver.TopK
			}

			root, err := buildRouteTree(cmd.Context(), docPath, fromDB)
			if err != nil {
				return err
			}

			ranked, err := root.LowestCosts(topK)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d route(s) total, showing %d cheapest:\n", root.NumRoutes(), len(ranked))
			for _, rc := range ranked {
				inputs, err := root.RouteInputs(rc.Index)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  route %d  cost=%g  sources=%v\n", rc.Index, rc.Cost, inputs)
				dump, err := root.Describe(rc.Index)
				if err != nil {
					return err
				}
				fmt.Fprint(out, indent(dump, "    "))
			}
			return nil
		},
	}

	routesCmd.Flags().StringVarP(&docPath, "file", "f", "", "mapping document (required)")
	routesCmd.Flags().IntVarP(&topK, "top", "k", 0, "how many routes to list (default: resolver.top_k)")
	routesCmd.Flags().BoolVar(&fromDB, "from-db", false, "read relation triples from the configured PostgreSQL store")
	_ = routesCmd.MarkFlagRequired("file")

	return routesCmd
}

func indent(s, prefix string) string {
	var out string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out += prefix + s[start:i+1]
			start = i + 1
		}
	}
	if start < len(s) {
		out += prefix + s[start:]
	}
	return out
}
