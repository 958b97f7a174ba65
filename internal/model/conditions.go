package model

// Conditions is a point-in-time weather and snow record for one location,
// as returned by the forecast provider for the query's target date.
type Conditions struct {
	FreshSnow24hCM float64 `json:"fresh_snow_24h_cm"`
	SnowDepthCM    float64 `json:"snow_depth_cm"`
	TempC          float64 `json:"temp_c"`
	WindKPH        float64 `json:"wind_kph"`
	VisibilityM    float64 `json:"visibility_m"`
	WeatherCode    int     `json:"weather_code"`
}

// FreshSnowIn returns fresh snowfall in inches.
func (c Conditions) FreshSnowIn() float64 { return c.FreshSnow24hCM / 2.54 }

// SnowDepthIn returns base depth in inches.
func (c Conditions) SnowDepthIn() float64 { return c.SnowDepthCM / 2.54 }

// TempF returns temperature in Fahrenheit.
func (c Conditions) TempF() float64 { return c.TempC*9/5 + 32 }

// WindMPH returns wind speed in miles per hour.
func (c Conditions) WindMPH() float64 { return c.WindKPH * 0.621371 }

// IsRainy reports whether the WMO weather code indicates rain or drizzle,
// the leading signal of a thaw that turns to boilerplate overnight.
func (c Conditions) IsRainy() bool {
	switch c.WeatherCode {
	case 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 80, 81, 82:
		return true
	}
	return false
}

// wmoDescriptions maps WMO weather interpretation codes to readable text.
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// WeatherDescription returns a readable description of the WMO weather code.
func (c Conditions) WeatherDescription() string {
	if d, ok := wmoDescriptions[c.WeatherCode]; ok {
		return d
	}
	return "Unknown"
}

// DriveInfo is the routing result from origin to a candidate. Approximate is
// true when the precise routing provider failed and the duration was derived
// from great-circle distance instead (low confidence).
type DriveInfo struct {
	DurationMinutes float64 `json:"duration_minutes"`
	DistanceKM      float64 `json:"distance_km"`
	Approximate     bool    `json:"approximate,omitempty"`
}

// Candidate is a catalog mountain joined with live data for one query.
// Read-only after the enrichment join completes.
type Candidate struct {
	Mountain

	// DistanceKM is the great-circle distance from the query origin,
	// computed by the geographic prefilter.
	DistanceKM float64 `json:"distance_km"`

	Conditions *Conditions `json:"conditions,omitempty"`
	Drive      *DriveInfo  `json:"drive,omitempty"`

	// Degraded marks a candidate whose enrichment failed after retries.
	// Degraded candidates never abort the query; policy decides whether
	// they are excluded from scoring or scored with a completeness penalty.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// DriveMinutesOrEstimate returns the routed drive time, or the
// distance-derived estimate when no routing result is attached.
func (c Candidate) DriveMinutesOrEstimate() float64 {
	if c.Drive != nil {
		return c.Drive.DurationMinutes
	}
	return c.DistanceKM * 0.75
}
