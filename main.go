package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand
type app struct {
	configPath string
	cfg        Config
	logger     zerolog.Logger
	metrics    *Metrics
	planner    *Planner
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "route-planner",
		Short:        "Obstacle-aware route planning over roadmaps, visibility graphs and mazes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default $"+ConfigEnv+")")

	root.AddCommand(a.serveCmd(), a.buildCmd(), a.routeCmd(), a.mazeCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = NewLogger(cfg, cmd.ErrOrStderr())
	a.metrics = NewMetrics()
	a.planner = NewPlanner(cfg, a.logger, a.metrics)
	return nil
}

// loadWorld loads obstacles and, when the file exists, the saved roadmap
func (a *app) loadWorld(requireRoadmap bool) error {
	if err := a.planner.LoadObstacles(); err != nil {
		return err
	}
	err := a.planner.LoadRoadmap(a.cfg.Roadmap.File)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !requireRoadmap:
		a.logger.Info().Str("file", a.cfg.Roadmap.File).Msg("no roadmap file, POST /buildRoadmap to create one")
	default:
		return err
	}
	return nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadWorld(false); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := NewServer(a.cfg, a.planner, a.metrics, a.logger).Run(ctx)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
}

func (a *app) buildCmd() *cobra.Command {
	var (
		samples int
		radius  float64
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Sample a roadmap around the obstacles and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.LoadObstacles(); err != nil {
				return err
			}
			opts := a.planner.RoadmapOptions()
			if samples > 0 {
				opts.Samples = samples
			}
			if radius > 0 {
				opts.ConnectionRadius = radius
			}
			if seed == 0 {
				seed = a.cfg.Roadmap.Seed
			}
			rm, err := a.planner.BuildRoadmap(opts, seed, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nodes, %d edges -> %s\n", len(rm.Nodes), rm.EdgeCount(), a.cfg.Roadmap.File)
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 0, "number of free-space samples (default from config)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "connection radius in coordinate units (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 uses roadmap.seed or the clock")
	return cmd
}

func (a *app) routeCmd() *cobra.Command {
	var (
		req        RouteRequest
		visibility bool
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Plan one route offline and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadWorld(!visibility); err != nil {
				return err
			}
			var (
				resp RouteResponse
				err  error
			)
			if visibility {
				resp, err = a.planner.VisibilityRoute(cmd.Context(), req)
			} else {
				resp, err = a.planner.Route(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range resp.Path {
				fmt.Fprintf(out, "%.6f,%.6f\n", p.X, p.Y)
			}
			fmt.Fprintf(out, "distance %.3f, expanded %d\n", resp.Distance, resp.Expanded)
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.Start.X, "from-x", 0, "start x (longitude)")
	cmd.Flags().Float64Var(&req.Start.Y, "from-y", 0, "start y (latitude)")
	cmd.Flags().Float64Var(&req.End.X, "to-x", 0, "end x (longitude)")
	cmd.Flags().Float64Var(&req.End.Y, "to-y", 0, "end y (latitude)")
	cmd.Flags().StringVar(&req.Metric, "metric", "", "planar or haversine (default from config)")
	cmd.Flags().BoolVar(&visibility, "visibility", false, "route over a visibility graph instead of the roadmap")
	return cmd
}

func (a *app) mazeCmd() *cobra.Command {
	var diagonal bool
	cmd := &cobra.Command{
		Use:   "maze FILE",
		Short: "Find the cheapest walk from S to G in a text maze",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			maze, err := ParseMaze(f)
			if err != nil {
				return err
			}
			maze.Diagonal = diagonal
			start, goal, err := mazeEndpoints(maze, nil, nil)
			if err != nil {
				return err
			}

			route, err := a.planner.MazeRoute(cmd.Context(), maze, start, goal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, maze.Render(route.Path))
			fmt.Fprintf(out, "cost %.3f, %d steps, expanded %d\n", route.Cost, len(route.Path)-1, route.Expanded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&diagonal, "diagonal", false, "allow diagonal moves")
	return cmd
}
