package proj4_coordinate_converter

import (
	"fmt"
	"strings"

	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/pkg/errors"
)

var epsgDefinitions = map[int]string{
	4326:  "+proj=longlat +datum=WGS84 +no_defs",
	4978:  "+proj=geocent +datum=WGS84 +units=m +no_defs",
	3395:  "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
	3857:  "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
	2056:  "+proj=somerc +lat_0=46.95240555555556 +lon_0=7.439583333333333 +k_0=1 +x_0=2600000 +y_0=1200000 +ellps=bessel +towgs84=674.374,15.056,405.346,0,0,0,0 +units=m +no_defs",
	3006:  "+proj=utm +zone=33 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	28992: "+proj=sterea +lat_0=52.15616055555555 +lon_0=5.38763888888889 +k=0.9999079 +x_0=155000 +y_0=463000 +ellps=bessel +towgs84=565.417,50.3319,465.552,-0.398957,0.343988,-1.8774,4.0725 +units=m +no_defs",
}

// Definition returns the proj4 definition string of an EPSG code.
// WGS84 UTM zones (326xx north, 327xx south) are generated.
func Definition(srid int) (string, error) {
	if def, ok := epsgDefinitions[srid]; ok {
		return def, nil
	}
	switch {
	case srid > 32600 && srid <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", srid-32600), nil
	case srid > 32700 && srid <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", srid-32700), nil
	}
	return "", errors.Wrapf(converters.ErrUnsupportedSrid, "EPSG:%d", srid)
}

// IsLatLong reports whether the definition expects angular coordinates
func IsLatLong(definition string) bool {
	return strings.Contains(definition, "+proj=longlat") || strings.Contains(definition, "+proj=latlong")
}
