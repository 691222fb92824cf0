package leadtime

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/gazetteer"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/observability"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/track"
)

// HazardField supplies, per storm, the countries judged affected by the
// hazard intensity field together with the indices of the contributing
// tracks. Consumed only by the band-fall and closest-point tiers.
type HazardField interface {
	AffectedCountries() map[int][]int
}

// ResolutionKind names the tier that produced a country's lead times.
type ResolutionKind int

const (
	// Landfall means a densified track point resolved to the country.
	Landfall ResolutionKind = iota
	// BandFall means a track point came within the landfall radius.
	BandFall
	// Closest means only the globally closest track point was used.
	Closest
	// InitTime means the forecast initialization time was assigned.
	InitTime
)

// String returns the tier label used in logs and metrics.
func (k ResolutionKind) String() string {
	switch k {
	case Landfall:
		return "landfall"
	case BandFall:
		return "band_fall"
	case Closest:
		return "closest_point"
	case InitTime:
		return "init_time"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", int(k))
	}
}

// Resolution is the outcome of one tier for one country.
type Resolution struct {
	Kind      ResolutionKind
	LeadTimes LeadTimes
}

// Settings carries the estimation parameters.
type Settings struct {
	// GridResolution is the maximum point spacing, in planar degrees, used
	// when densifying tracks for the landfall tier.
	GridResolution float64
	// LandfallRadiusKm is the band-fall distance threshold.
	LandfallRadiusKm float64
}

// Estimator resolves per-country lead times from a track ensemble.
type Estimator struct {
	countries gazetteer.Gazetteer
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewEstimator wires an estimator with its country lookup collaborator and
// observability.
func NewEstimator(countries gazetteer.Gazetteer, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Estimator {
	return &Estimator{
		countries: countries,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
	}
}

// Estimate runs all tiers for a forecast and assembles the hazard
// metadata. Tier order is strict and merging is first-writer-wins: a
// country resolved by an earlier tier is never overwritten.
func (e *Estimator) Estimate(eventName string, tracks []track.Track, hazard HazardField) (HazardMetadata, error) {
	if len(tracks) == 0 {
		return HazardMetadata{}, errors.New("leadtime: missing forecast data")
	}
	start := clock.Now()

	initTime, err := InitTimeFromTracks(tracks)
	if err != nil {
		return HazardMetadata{}, err
	}

	resolved, err := e.Landfalls(tracks)
	if err != nil {
		return HazardMetadata{}, err
	}
	e.logger.Debug("tracks have landfall in countries", "countries", sortedKeys(resolved))

	affected := hazard.AffectedCountries()

	withoutLandfall := removeResolved(affected, resolved)
	if len(withoutLandfall) > 0 {
		e.logger.Debug("affected countries without landfall", "countries", sortedTrackKeys(withoutLandfall))
		bandFalls, err := e.BandFalls(tracks, sortedTrackKeys(withoutLandfall))
		if err != nil {
			return HazardMetadata{}, err
		}
		mergeIfMissing(resolved, bandFalls)
	}

	remaining := removeResolved(withoutLandfall, resolved)
	if len(remaining) > 0 {
		e.logger.Debug("applying closest-point lead times to remaining affected countries",
			"countries", sortedTrackKeys(remaining))
		closest, err := e.ClosestTimes(tracks, remaining)
		if err != nil {
			return HazardMetadata{}, err
		}
		mergeIfMissing(resolved, closest)
	}

	unresolvable := removeResolved(remaining, resolved)
	if len(unresolvable) > 0 {
		e.logger.Debug("falling back to initialization time", "countries", sortedTrackKeys(unresolvable))
		mergeIfMissing(resolved, e.InitTimeLeadTimes(sortedTrackKeys(unresolvable), initTime))
	}

	perCountry := make(map[int]LeadTimes, len(resolved))
	for _, code := range sortedKeys(resolved) {
		resolution := resolved[code]
		perCountry[code] = resolution.LeadTimes
		e.metrics.CountriesResolved.WithLabelValues(resolution.Kind.String()).Inc()
	}

	metadata, err := NewHazardMetadata(eventName, initTime, perCountry)
	if err != nil {
		return HazardMetadata{}, err
	}

	e.metrics.EstimationsTotal.Inc()
	e.metrics.EstimationDuration.Observe(clock.Since(start).Seconds())
	e.logger.Info("lead times estimated",
		"event", eventName,
		"countries", len(perCountry),
		"tracks", len(tracks),
	)
	return metadata, nil
}

// Landfalls is the direct-landfall tier: densify all tracks at the grid
// resolution, resolve every point to a country code in one batch, and take
// per country the earliest time per track, weighted by track frequency.
// Countries with zero contributing tracks are absent from the result.
func (e *Estimator) Landfalls(tracks []track.Track) (map[int]Resolution, error) {
	result := make(map[int]Resolution)
	if len(tracks) == 0 {
		return result, nil
	}

	dense := track.DensifyAll(tracks, e.settings.GridResolution)

	codes, err := e.resolveTrackCountryCodes(dense)
	if err != nil {
		return nil, err
	}

	for _, code := range uniqueLandCodes(codes) {
		var times []time.Time
		var weights []float64
		offset := 0
		for _, t := range dense {
			if earliest, ok := earliestMatch(t, codes[offset:offset+t.Len()], code); ok {
				times = append(times, earliest)
				weights = append(weights, t.Frequency())
			}
			offset += t.Len()
		}
		lt, err := FromAll(times, weights)
		if err != nil {
			return nil, err
		}
		result[code] = Resolution{Kind: Landfall, LeadTimes: lt}
	}
	return result, nil
}

// resolveTrackCountryCodes flattens all track points into one batch lookup.
func (e *Estimator) resolveTrackCountryCodes(tracks []track.Track) ([]int, error) {
	total := 0
	for _, t := range tracks {
		total += t.Len()
	}
	latitudes := make([]float64, 0, total)
	longitudes := make([]float64, 0, total)
	for _, t := range tracks {
		latitudes = append(latitudes, t.Latitudes()...)
		longitudes = append(longitudes, t.Longitudes()...)
	}

	codes, err := e.countries.ResolveCountryCodes(latitudes, longitudes)
	if err != nil {
		return nil, fmt.Errorf("leadtime: resolve country codes: %w", err)
	}
	if len(codes) != total {
		return nil, fmt.Errorf("leadtime: resolved %d country codes for %d points", len(codes), total)
	}
	return codes, nil
}

// earliestMatch returns the earliest timestamp of the track points whose
// resolved code equals the wanted country.
func earliestMatch(t track.Track, codes []int, country int) (time.Time, bool) {
	var earliest time.Time
	found := false
	for i, code := range codes {
		if code != country {
			continue
		}
		if !found || t.Times()[i].Before(earliest) {
			earliest = t.Times()[i]
			found = true
		}
	}
	return earliest, found
}

// BandFalls is the proximity tier: per country, per track, the first point
// in track order within the landfall radius of the country geometry.
// Countries whose geometry is unknown are skipped.
func (e *Estimator) BandFalls(tracks []track.Track, countryCodes []int) (map[int]Resolution, error) {
	geometries, err := gazetteer.Geometries(e.countries, countryCodes)
	if err != nil {
		e.logger.Warn("no geometry for any band-fall candidate", "countries", countryCodes, "error", err)
	}

	result := make(map[int]Resolution)
	for _, code := range countryCodes {
		geometry, ok := geometries[code]
		if !ok {
			e.logger.Warn("no geometry for country, skipping band-fall tier", "country", code)
			continue
		}

		var firstTimes []time.Time
		var weights []float64
		for _, t := range tracks {
			if first, ok := track.FirstTimeCloserThan(t, geometry, e.settings.LandfallRadiusKm); ok {
				firstTimes = append(firstTimes, first)
				weights = append(weights, t.Frequency())
			}
		}
		if len(firstTimes) == 0 {
			continue
		}

		lt, err := FromAll(firstTimes, weights)
		if err != nil {
			return nil, err
		}
		result[code] = Resolution{Kind: BandFall, LeadTimes: lt}
	}
	return result, nil
}

// ClosestTimes is the closest-point tier: over only the tracks known to
// intersect a country's hazard field, the timestamp of the single globally
// closest point becomes a one-element LeadTimes.
func (e *Estimator) ClosestTimes(tracks []track.Track, tracksPerCountry map[int][]int) (map[int]Resolution, error) {
	codes := sortedTrackKeys(tracksPerCountry)
	geometries, err := gazetteer.Geometries(e.countries, codes)
	if err != nil {
		e.logger.Warn("no geometry for any closest-point candidate", "countries", codes, "error", err)
	}

	result := make(map[int]Resolution)
	for _, code := range codes {
		geometry, ok := geometries[code]
		if !ok {
			e.logger.Warn("no geometry for country, skipping closest-point tier", "country", code)
			continue
		}

		closestDistance := math.Inf(1)
		var closestTime time.Time
		found := false
		for _, index := range tracksPerCountry[code] {
			if index < 0 || index >= len(tracks) {
				return nil, fmt.Errorf("leadtime: track index %d out of range for country %d", index, code)
			}
			t, distance, err := track.ClosestPoint(tracks[index], geometry)
			if err != nil {
				return nil, fmt.Errorf("leadtime: closest point for country %d: %w", code, err)
			}
			if distance < closestDistance {
				closestDistance = distance
				closestTime = t
				found = true
			}
		}
		if found {
			result[code] = Resolution{Kind: Closest, LeadTimes: FromMedian(closestTime)}
		}
	}
	return result, nil
}

// InitTimeLeadTimes assigns the forecast initialization time as the sole
// lead time of each country.
func (e *Estimator) InitTimeLeadTimes(countryCodes []int, initTime time.Time) map[int]Resolution {
	result := make(map[int]Resolution, len(countryCodes))
	for _, code := range countryCodes {
		result[code] = Resolution{Kind: InitTime, LeadTimes: FromMedian(initTime)}
	}
	return result
}

// InitTimeFromTracks returns the earliest timestamp any track starts at.
func InitTimeFromTracks(tracks []track.Track) (time.Time, error) {
	var initTime time.Time
	found := false
	for _, t := range tracks {
		if t.Len() == 0 {
			continue
		}
		if start := t.Times()[0]; !found || start.Before(initTime) {
			initTime = start
			found = true
		}
	}
	if !found {
		return time.Time{}, errors.New("leadtime: tracks are empty")
	}
	return initTime, nil
}

// mergeIfMissing merges src into dst without overwriting existing entries.
func mergeIfMissing(dst, src map[int]Resolution) {
	for code, resolution := range src {
		if _, ok := dst[code]; !ok {
			dst[code] = resolution
		}
	}
}

// removeResolved returns the affected-country entries not yet resolved.
func removeResolved(affected map[int][]int, resolved map[int]Resolution) map[int][]int {
	remaining := make(map[int][]int)
	for code, indexes := range affected {
		if _, ok := resolved[code]; !ok {
			remaining[code] = indexes
		}
	}
	return remaining
}

// uniqueLandCodes returns the distinct non-ocean codes in ascending order.
func uniqueLandCodes(codes []int) []int {
	seen := make(map[int]struct{})
	for _, code := range codes {
		if code != gazetteer.OceanCode {
			seen[code] = struct{}{}
		}
	}
	unique := make([]int, 0, len(seen))
	for code := range seen {
		unique = append(unique, code)
	}
	sort.Ints(unique)
	return unique
}

func sortedKeys(m map[int]Resolution) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedTrackKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
