package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
	"github.com/xkilldash9x/maproute/internal/config"
	"github.com/xkilldash9x/maproute/internal/mappingdoc"
	"github.com/xkilldash9x/maproute/internal/observability"
	"github.com/xkilldash9x/maproute/internal/resolver"
	"github.com/xkilldash9x/maproute/internal/triplestore"
)

func newResolveCmd() *cobra.Command {
	var (
		docPath       string
		routeIndex    int
		unit          string
		magnitudeOnly bool
		fromDB        bool
	)

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a target concept and evaluate one route",
		Long: `Loads a mapping document, builds the route tree for its target and
evaluates the cheapest route (or the route selected with --route). With
--from-db the relation triples are read from the configured PostgreSQL
store instead of the document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := buildRouteTree(cmd.Context(), docPath, fromDB)
			if err != nil {
				return err
			}

			if magnitudeOnly {
				mag, err := root.EvalMagnitude(routeIndex, unit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", mag)
				return nil
			}

			q, err := root.Eval(routeIndex, unit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", q)
			return nil
		},
	}

	resolveCmd.Flags().StringVarP(&docPath, "file", "f", "", "mapping document (required)")
	resolveCmd.Flags().IntVar(&routeIndex, "route", resolver.CheapestRoute, "route index to evaluate (default: cheapest)")
	resolveCmd.Flags().StringVarP(&unit, "unit", "u", "", "convert the result to this unit")
	resolveCmd.Flags().BoolVar(&magnitudeOnly, "magnitude", false, "print the bare magnitude without its unit")
	resolveCmd.Flags().BoolVar(&fromDB, "from-db", false, "read relation triples from the configured PostgreSQL store")
	_ = resolveCmd.MarkFlagRequired("file")

	return resolveCmd
}

// buildRouteTree loads the mapping document, selects the triple source and
// resolves the document's target.
func buildRouteTree(ctx context.Context, docPath string, fromDB bool) (*resolver.Step, error) {
	logger := observability.GetLogger()
	cfg := config.Get()
	preds := cfg.Resolver.EffectivePredicates()

	doc, err := mappingdoc.Load(docPath)
	if err != nil {
		return nil, err
	}
	sources, err := doc.ResolvedSources()
	if err != nil {
		return nil, err
	}
	repo, err := doc.ResolvedRepo()
	if err != nil {
		return nil, err
	}

	var src schemas.TripleSource
	if fromDB {
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("--from-db requires postgres.url to be configured")
		}
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		src, err = triplestore.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			return nil, err
		}
	} else {
		mem := triplestore.NewInMemoryStore(logger)
		if err := mem.AddAll(ctx, doc.ResolvedTriples(preds)); err != nil {
			return nil, err
		}
		src = mem
	}

	r := resolver.New(
		resolver.WithPredicates(preds),
		resolver.WithFunctionRepo(repo),
		resolver.WithMaxDepth(cfg.Resolver.MaxDepth),
		resolver.WithLogger(logger),
	)
	target := doc.ResolvedTarget()
	root, err := r.Resolve(ctx, target, sources, src)
	if err != nil {
		return nil, err
	}
	logger.Info("Target resolved",
		zap.String("target", target),
		zap.Int("routes", root.NumRoutes()))
	return root, nil
}
