package satgrid

// CreateLonLatGrids returns dense longitude and latitude grids for every
// pixel centre of geobox, reconstructed by BLRB interpolation at the given
// depth. Longitude and latitude vary smoothly across a scene, so the
// interpolated grids agree with exact reprojection to well below pixel
// resolution at the default depth.
func CreateLonLatGrids(geobox *GriddedGeoBox, depth int) ([][]float64, [][]float64, error) {
	rows, cols := geobox.Shape()
	shape := [2]int{rows, cols}

	lon := NewGrid(rows, cols)
	if err := InterpolateGrid(lon, NewLongitudeEvaluator(geobox), depth, [2]int{0, 0}, shape); err != nil {
		return nil, nil, err
	}

	lat := NewGrid(rows, cols)
	if err := InterpolateGrid(lat, NewLatitudeEvaluator(geobox), depth, [2]int{0, 0}, shape); err != nil {
		return nil, nil, err
	}

	return lon, lat, nil
}
