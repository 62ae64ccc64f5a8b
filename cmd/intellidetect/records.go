package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
)

// call runs fn with a signed-in client bounded by the command deadline.
func (c *cli) call(cmd *cobra.Command, fn func(ctx context.Context, s *client.Services) error) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), c.deadline())
	defer cancel()
	return fn(ctx, c.commandServices())
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func addPageFlags(cmd *cobra.Command, page, size *int) {
	cmd.Flags().IntVar(page, "page", domain.DefaultPage, "page number, starting at 1")
	cmd.Flags().IntVar(size, "size", domain.DefaultPageSize, "records per page")
}

func newAccidentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accidents",
		Aliases: []string{"accident"},
		Short:   "Browse and annotate accident records",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accidents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				p, err := s.Accidents.ListAccidents(ctx, page, size)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), p, func() string { return formatAccidentListHuman(p) })
			})
		},
	}
	addPageFlags(list, &page, &size)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one accident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				a, err := s.Accidents.GetAccident(ctx, id)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), a, func() string { return formatAccidentHuman(a) })
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show accident totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				st, err := s.Accidents.AccidentStats(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), st, func() string { return formatAccidentStatsHuman(st) })
			})
		},
	}

	display := &cobra.Command{
		Use:   "display <id> <text>",
		Short: "Set the display text shown for an accident",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				a, err := s.Accidents.UpdateAccidentDisplay(ctx, id, args[1])
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), a, func() string {
					return status(fmt.Sprintf("accident #%d display info saved", a.ID))
				})
			})
		},
	}

	var in domain.AccidentInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Record a new accident",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.AccidentDescription == "" {
				return errors.New("--description is required")
			}
			if in.AccidentDescriptionTime == "" {
				in.AccidentDescriptionTime = time.Now().UTC().Format(time.RFC3339)
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				a, err := s.Accidents.CreateAccident(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), a, func() string {
					return status(fmt.Sprintf("accident #%d recorded", a.ID))
				})
			})
		},
	}
	f := create.Flags()
	f.StringVar(&in.AccidentDescription, "description", "", "short description")
	f.StringVar(&in.AccidentDescriptionText, "details", "", "full description")
	f.StringVar(&in.AccidentDescriptionTime, "time", "", "when it happened, RFC 3339 (default: now)")
	f.StringVar(&in.AccidentDescriptionState, "state", "pending", "processing state")
	f.StringVar(&in.VideoURL, "video-url", "", "video clip URL")
	f.StringVar(&in.ImageURL, "image-url", "", "snapshot URL")

	cmd.AddCommand(list, get, stats, display, create)
	return cmd
}

func newObstaclesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obstacles",
		Aliases: []string{"obstacle"},
		Short:   "Browse and annotate obstacle records",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List obstacles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				p, err := s.Obstacles.ListObstacles(ctx, page, size)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), p, func() string { return formatObstacleListHuman(p) })
			})
		},
	}
	addPageFlags(list, &page, &size)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one obstacle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				o, err := s.Obstacles.GetObstacle(ctx, id)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), o, func() string { return formatObstacleHuman(o) })
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show obstacle totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				st, err := s.Obstacles.ObstacleStats(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), st, func() string { return formatObstacleStatsHuman(st) })
			})
		},
	}

	highRisk := &cobra.Command{
		Use:   "high-risk",
		Short: "List high-risk obstacles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				high, err := s.Obstacles.HighRiskObstacles(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), high, func() string { return formatHighRiskHuman(high) })
			})
		},
	}

	display := &cobra.Command{
		Use:   "display <id> <text>",
		Short: "Set the display text shown for an obstacle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				o, err := s.Obstacles.UpdateObstacleDisplay(ctx, id, args[1])
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), o, func() string {
					return status(fmt.Sprintf("obstacle #%d display info saved", o.ID))
				})
			})
		},
	}

	var in domain.ObstacleInput
	var typ, risk string
	create := &cobra.Command{
		Use:   "create",
		Short: "Record a new obstacle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Type = domain.ObstacleType(typ)
			if !in.Type.Valid() {
				return fmt.Errorf("unknown obstacle type %q (want one of %v)", typ, domain.ObstacleTypes)
			}
			in.RiskLevel = domain.RiskLevel(risk)
			switch in.RiskLevel {
			case "", domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
			default:
				return fmt.Errorf("unknown risk level %q", risk)
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				o, err := s.Obstacles.CreateObstacle(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), o, func() string {
					return status(fmt.Sprintf("obstacle #%d recorded", o.ID))
				})
			})
		},
	}
	f := create.Flags()
	f.StringVar(&typ, "type", string(domain.ObstacleOther), "building, crane, tree, equipment or other")
	f.StringVar(&risk, "risk", "", "low, medium or high")
	f.Float64Var(&in.Latitude, "lat", 0, "latitude")
	f.Float64Var(&in.Longitude, "lon", 0, "longitude")
	f.Float64Var(&in.Height, "height", 0, "height in meters")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.ImageURL, "image-url", "", "snapshot URL")

	cmd.AddCommand(list, get, stats, highRisk, display, create)
	return cmd
}

func newDetectionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "detections",
		Aliases: []string{"detection"},
		Short:   "Query road-surface detections",
	}

	realtime := &cobra.Command{
		Use:   "realtime",
		Short: "Show the latest detections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				ds, err := s.Obstacles.RealtimeDetections(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), ds, func() string { return formatDetectionsHuman(ds) })
			})
		},
	}

	var since time.Duration
	var startRaw, endRaw string
	history := &cobra.Command{
		Use:   "history",
		Short: "Show detections in a time range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := timeRange(since, startRaw, endRaw, time.Now())
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				ds, err := s.Obstacles.HistoryDetections(ctx, start, end)
				if err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), ds, func() string { return formatDetectionsHuman(ds) })
			})
		},
	}
	history.Flags().DurationVar(&since, "since", 24*time.Hour, "look back this far when --start is not set")
	history.Flags().StringVar(&startRaw, "start", "", "range start, RFC 3339")
	history.Flags().StringVar(&endRaw, "end", "", "range end, RFC 3339 (default: now)")

	var md domain.ManualDetection
	var typ string
	manual := &cobra.Command{
		Use:   "manual",
		Short: "Submit a manual detection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			md.Type = domain.DetectionType(typ)
			if md.Type != domain.DetectionStone && md.Type != domain.DetectionTrash {
				return fmt.Errorf("unknown detection type %q (want stone or trash)", typ)
			}
			return c.call(cmd, func(ctx context.Context, s *client.Services) error {
				if err := s.Obstacles.PostManualDetection(ctx, md); err != nil {
					return err
				}
				return c.emit(cmd.OutOrStdout(), md, func() string { return status("detection submitted") })
			})
		},
	}
	f := manual.Flags()
	f.StringVar(&typ, "type", string(domain.DetectionStone), "stone or trash")
	f.Float64Var(&md.Coordinates.Latitude, "lat", 0, "latitude")
	f.Float64Var(&md.Coordinates.Longitude, "lon", 0, "longitude")
	f.Float64Var(&md.Size, "size", 0, "size in centimeters")
	f.StringVar(&md.Notes, "notes", "", "operator notes")

	cmd.AddCommand(realtime, history, manual)
	return cmd
}

// timeRange resolves the history window. An explicit start wins over since.
func timeRange(since time.Duration, startRaw, endRaw string, now time.Time) (time.Time, time.Time, error) {
	end := now
	if endRaw != "" {
		t, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = t
	}
	start := end.Add(-since)
	if startRaw != "" {
		t, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("start is after end")
	}
	return start, end, nil
}
