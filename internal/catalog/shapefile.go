package catalog

import (
	"context"
	"math"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// squareMetersPerAcre converts projected polygon area to acres.
const squareMetersPerAcre = 4046.8564224

// ImportBoundaries reads ski-area boundary polygons from a shapefile and
// records skiable acreage on matching catalog rows. Polygons are joined to
// mountains by a name attribute; unmatched polygons are logged and skipped.
func ImportBoundaries(ctx context.Context, store Store, shpPath, nameField string) (int, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return 0, eris.Wrap(err, "catalog: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return 0, eris.Errorf("catalog: shapefile field %q not found", nameField)
	}

	var matched int
	for reader.Next() {
		if ctx.Err() != nil {
			return matched, eris.Wrap(ctx.Err(), "catalog: import boundaries")
		}

		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			continue
		}

		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if name == "" {
			continue
		}

		acres := polygonAcres(poly)
		if acres <= 0 {
			continue
		}

		ok, err := store.SetBoundaryAcres(ctx, name, acres)
		if err != nil {
			return matched, err
		}
		if !ok {
			zap.L().Debug("boundary polygon matched no mountain", zap.String("name", name))
			continue
		}
		matched++
	}

	zap.L().Info("boundary import complete", zap.Int("matched", matched))
	return matched, nil
}

// polygonAcres computes the area of a lat/lon polygon in acres. Rings are
// projected to local planar meters around the polygon centroid before
// measuring; at ski-area scale the distortion is negligible.
func polygonAcres(poly *shp.Polygon) float64 {
	g := geomFromShp(poly)
	if g == nil {
		return 0
	}
	return math.Abs(g.Area()) / squareMetersPerAcre
}

// geomFromShp converts a shapefile polygon to a go-geom polygon in local
// planar meters.
func geomFromShp(poly *shp.Polygon) *geom.Polygon {
	if len(poly.Parts) == 0 {
		return nil
	}

	// Centroid of the bounding box anchors the local projection.
	midLat := (poly.Box.MinY + poly.Box.MaxY) / 2
	metersPerDegLat := 111_320.0
	metersPerDegLon := 111_320.0 * math.Cos(midLat*math.Pi/180)

	g := geom.NewPolygon(geom.XY)
	for p, start := range poly.Parts {
		end := len(poly.Points)
		if p+1 < len(poly.Parts) {
			end = int(poly.Parts[p+1])
		}
		pts := poly.Points[int(start):end]
		if len(pts) < 3 {
			continue
		}

		coords := make([]geom.Coord, len(pts))
		for i, pt := range pts {
			coords[i] = geom.Coord{
				(pt.X - poly.Box.MinX) * metersPerDegLon,
				(pt.Y - poly.Box.MinY) * metersPerDegLat,
			}
		}
		ring := geom.NewLinearRing(geom.XY)
		ring.MustSetCoords(coords)
		g.Push(ring)
	}
	if g.NumLinearRings() == 0 {
		return nil
	}
	return g
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
