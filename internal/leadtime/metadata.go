package leadtime

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/gazetteer"
)

// HazardMetadata describes a hazard event: its name, forecast
// initialization time and per-country lead times. A country key being
// present means the hazard has a landfall (in the widest sense) there.
// Built once by the estimator, immutable afterwards.
type HazardMetadata struct {
	EventName  string
	InitTime   time.Time
	PerCountry map[int]LeadTimes
}

// NewHazardMetadata assembles and validates hazard metadata.
func NewHazardMetadata(eventName string, initTime time.Time, perCountry map[int]LeadTimes) (HazardMetadata, error) {
	m := HazardMetadata{EventName: eventName, InitTime: initTime, PerCountry: perCountry}
	if err := m.Check(); err != nil {
		return HazardMetadata{}, err
	}
	return m, nil
}

// CountryCodes returns all country codes in ascending order.
func (m HazardMetadata) CountryCodes() []int {
	codes := make([]int, 0, len(m.PerCountry))
	for code := range m.PerCountry {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// LeadTimesFor returns the lead times of one country.
func (m HazardMetadata) LeadTimesFor(countryCode int) (LeadTimes, error) {
	lt, ok := m.PerCountry[countryCode]
	if !ok {
		return LeadTimes{}, fmt.Errorf("leadtime: no lead times found for country %d", countryCode)
	}
	return lt, nil
}

// HasLandfall reports whether the hazard has a landfall in the given
// country.
func (m HazardMetadata) HasLandfall(countryCode int) bool {
	_, ok := m.PerCountry[countryCode]
	return ok
}

// HasAnyLandfall reports whether the hazard has a landfall anywhere.
func (m HazardMetadata) HasAnyLandfall() bool {
	return len(m.PerCountry) > 0
}

// Check validates the metadata for consistency.
func (m HazardMetadata) Check() error {
	for _, code := range m.CountryCodes() {
		if err := m.PerCountry[code].Check(code); err != nil {
			return err
		}
	}
	return nil
}

const timeLayout = time.RFC3339Nano

type countryLeadTimesJSON struct {
	CountryName   string   `json:"country_name,omitempty"`
	CountryAlpha3 string   `json:"country_alpha3,omitempty"`
	CountryAlpha2 string   `json:"country_alpha2,omitempty"`
	MedianLead    string   `json:"median_leadtime"`
	AllLeadTimes  []string `json:"all_leadtimes"`
}

type metadataJSON struct {
	EventName  string                          `json:"event_name"`
	InitTime   string                          `json:"initialisation_time"`
	PerCountry map[string]countryLeadTimesJSON `json:"leadtimes_per_country"`
}

// WriteJSON serializes the metadata, annotating each country with its
// alpha-2/alpha-3 codes and name resolved through the gazetteer. A country
// the gazetteer does not know keeps its numeric key without annotations.
func (m HazardMetadata) WriteJSON(w io.Writer, countries gazetteer.Gazetteer) error {
	out := metadataJSON{
		EventName:  m.EventName,
		InitTime:   m.InitTime.UTC().Format(timeLayout),
		PerCountry: make(map[string]countryLeadTimesJSON, len(m.PerCountry)),
	}

	for _, code := range m.CountryCodes() {
		lt := m.PerCountry[code]
		entry := countryLeadTimesJSON{
			MedianLead:   lt.Median.UTC().Format(timeLayout),
			AllLeadTimes: make([]string, len(lt.All)),
		}
		for i, t := range lt.All {
			entry.AllLeadTimes[i] = t.UTC().Format(timeLayout)
		}
		if countries != nil {
			if country, err := countries.CountryFromIdentifier(strconv.Itoa(code)); err == nil {
				entry.CountryName = country.Name
				entry.CountryAlpha3 = country.Alpha3
				entry.CountryAlpha2 = country.Alpha2
			}
		}
		out.PerCountry[strconv.Itoa(code)] = entry
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("leadtime: write metadata: %w", err)
	}
	return nil
}

// ReadJSON deserializes metadata written by WriteJSON. A missing median is
// recomputed as the unweighted median of all lead times. Non-numeric
// country keys are skipped.
func ReadJSON(r io.Reader) (HazardMetadata, error) {
	var in metadataJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return HazardMetadata{}, fmt.Errorf("leadtime: read metadata: %w", err)
	}

	initTime, err := time.Parse(timeLayout, in.InitTime)
	if err != nil {
		return HazardMetadata{}, fmt.Errorf("leadtime: parse initialisation time %q: %w", in.InitTime, err)
	}

	perCountry := make(map[int]LeadTimes, len(in.PerCountry))
	for key, entry := range in.PerCountry {
		code, err := strconv.Atoi(key)
		if err != nil {
			continue
		}

		all := make([]time.Time, len(entry.AllLeadTimes))
		for i, s := range entry.AllLeadTimes {
			if all[i], err = time.Parse(timeLayout, s); err != nil {
				return HazardMetadata{}, fmt.Errorf("leadtime: parse lead time %q for country %d: %w", s, code, err)
			}
		}

		var lt LeadTimes
		if entry.MedianLead == "" {
			if lt, err = FromAll(all, nil); err != nil {
				return HazardMetadata{}, err
			}
		} else {
			median, err := time.Parse(timeLayout, entry.MedianLead)
			if err != nil {
				return HazardMetadata{}, fmt.Errorf("leadtime: parse median lead time %q for country %d: %w",
					entry.MedianLead, code, err)
			}
			lt = LeadTimes{All: all, Median: median}
		}
		perCountry[code] = lt
	}

	return NewHazardMetadata(in.EventName, initTime, perCountry)
}
