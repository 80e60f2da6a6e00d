// Package domain models weather threat detection and route risk advisory data.
//
// # Metric Conventions
//
// All metrics are normalized to a single canonical unit set before any
// classification runs:
//
//	temperature    °C
//	wind speed     km/h (providers reporting m/s are converted at the adapter)
//	precipitation  mm
//	humidity       %
//	cloud cover    %
//	pressure       hPa
//
// Missing or unparseable fields default to zero rather than failing; the
// extractor never returns an error. Two corrections are applied on top of the
// raw readings:
//
// Condition-based precipitation estimate:
//
//	Rain gauges frequently report 0 mm while the provider's condition text
//	plainly says it is raining. When the condition names precipitation
//	(rain, drizzle, shower, thunderstorm) and the measured value is 0, an
//	estimate is substituted by intensity keyword:
//	  heavy → 15 mm | moderate → 8 mm | light/drizzle → 3 mm | otherwise → 5 mm
//
// Forecast substitution:
//
//	When the 24-hour forecast reports a wind or precipitation total above the
//	current reading, the larger value is used for the snapshot. Worsening
//	conditions are the operative risk.
//
// # Severity Classification
//
// Classification is an ordered rule cascade; rules are evaluated top-down and
// the first match wins. Earlier rules represent rarer, more dangerous
// situations that cannot be derived from thresholds alone (official alerts,
// severe forecasts). The order is a correctness property; do not reorder.
// Numeric boundaries are inclusive on the lower bound (>=) throughout.
//
//	 1. official alert signal        → Critical (High for watch/advisory)
//	 2. severe 24h forecast          → Critical hurricane / High storm
//	 3. wind ≥ 118 km/h              → Critical hurricane (hurricane force)
//	 4. temperature ≥ 40 °C          → Critical (≥45) / High heatwave
//	 5. precipitation ≥ 50 mm        → Critical flood
//	 6. precipitation ≥ 15 mm        → High (≥25) / Medium heavy rain
//	 7. precip ≥5 + humidity ≥85 + cloud ≥90 → Medium heavy rain
//	 8. wind ≥ 70 km/h + precip ≥5   → High storm
//	 9. wind ≥ 70 km/h               → Medium storm (wind advisory)
//	10. temperature ≤ −10 °C         → Medium (≤−20) / Low snow
//	11. otherwise                    → no alert
//
// Rules 6 and 7 can both match the same metrics; rule 6 is evaluated first
// and always wins. This matches the deployed behavior and is kept as-is.
//
// # Geodesic Math
//
// Distances use the Haversine great-circle formula with an Earth radius of
// 6371 km. The detour cost of a point relative to a route is
// d(point,start) + d(point,end) - d(start,end), a triangle-inequality measure
// of how far the point deviates from the direct path.
//
// # Alert Lifecycle
//
// For a given (location, alert type) pair at most one active alert may exist
// whose detection time falls within the last 6 hours; a second trigger inside
// that window is folded into the existing alert. Alerts expire 24 hours after
// detection and are never mutated afterwards; a fresh alert is created
// instead.
package domain
