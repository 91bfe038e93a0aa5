package entity

// DiscoveryStats summarises the persisted lead collection.
type DiscoveryStats struct {
	TotalFound     int             `json:"total_found"`
	NoWebsiteCount int             `json:"no_website_count"`
	WithEmailCount int             `json:"with_email_count"`
	ActiveCount    int             `json:"active_count"`
	ByCountry      map[Country]int `json:"by_country"`
}

// ComputeStats derives collection stats from the full lead set.
func ComputeStats(leads []Lead) DiscoveryStats {
	stats := DiscoveryStats{
		TotalFound: len(leads),
		ByCountry:  make(map[Country]int, len(Countries)),
	}
	for _, c := range Countries {
		stats.ByCountry[c] = 0
	}
	for _, lead := range leads {
		if !lead.HasWebsite {
			stats.NoWebsiteCount++
		}
		if lead.Email != nil {
			stats.WithEmailCount++
		}
		if lead.IsActive {
			stats.ActiveCount++
		}
		stats.ByCountry[lead.Country]++
	}
	return stats
}
