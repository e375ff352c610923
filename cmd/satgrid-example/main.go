package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	satgrid "github.com/ausgeo/go-satgrid"
)

func run() error {
	rows := flag.Int("rows", 512, "raster rows")
	cols := flag.Int("cols", 512, "raster columns")
	vertexRows := flag.Int("vertex-rows", 3, "coordinator rows")
	vertexCols := flag.Int("vertex-cols", 3, "coordinator columns (odd)")
	centre := flag.String("centre-time", "2024-01-12T23:52:00Z", "scene centre time (RFC 3339)")
	flag.Parse()

	centreTime, err := time.Parse(time.RFC3339, *centre)
	if err != nil {
		return err
	}

	// A Landsat 8-like scene over south-eastern Australia.
	geobox, err := satgrid.NewGriddedGeoBox(*rows, *cols, 644000, 6283000, 25, 25, "EPSG:32655")
	if err != nil {
		return err
	}
	acq := &satgrid.Acquisition{
		SceneCentreTime: centreTime,
		Inclination:     98.2,
		SemiMajorRadius: 7083137,
		AngularVelocity: 0.0010593,
	}

	lon, lat, err := satgrid.CreateLonLatGrids(geobox, satgrid.DefaultInterpolationDepth)
	if err != nil {
		return err
	}
	grids, err := satgrid.ComputeAngleGrids(acq, geobox, lon, lat)
	if err != nil {
		return err
	}

	coordinator, err := satgrid.CreateVertices(geobox, grids.Boxline, *vertexRows, *vertexCols)
	if err != nil {
		return err
	}

	fmt.Println("row_index col_index latitude longitude map_y map_x")
	for _, c := range coordinator {
		fmt.Printf("%d %d %.6f %.6f %.1f %.1f\n", c.RowIndex, c.ColIndex, c.Latitude, c.Longitude, c.MapY, c.MapX)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
