package main

import (
	"encoding/json"

	"github.com/fekuna/blueice-inventory-service/internal/route/dto"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func optimizeRouteCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize-route",
		Usage: "resequence a route's customers by nearest neighbour",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "route-id", Required: true},
			&cli.Float64Flag{Name: "start-lat", Usage: "start latitude, used only together with --start-lng"},
			&cli.Float64Flag{Name: "start-lng", Usage: "start longitude, used only together with --start-lat"},
		},
		Action: func(c *cli.Context) error {
			cfg, appLogger, err := bootstrap()
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			deps, err := buildDeps(cfg, appLogger, false)
			if err != nil {
				return err
			}
			defer deps.Close()

			input := &dto.OptimizeInput{RouteID: c.String("route-id")}
			if c.IsSet("start-lat") {
				lat := c.Float64("start-lat")
				input.StartLat = &lat
			}
			if c.IsSet("start-lng") {
				lng := c.Float64("start-lng")
				input.StartLng = &lng
			}

			res, err := deps.RouteUC.OptimizeRouteSequence(c.Context, input)
			if err != nil {
				appLogger.Error("route optimization failed", zap.String("route_id", input.RouteID), zap.Error(err))
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
