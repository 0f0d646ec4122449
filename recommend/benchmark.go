package recommend

import "math"

// Range is an inclusive score band.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Average is the rounded midpoint of the band.
func (r Range) Average() int {
	return int(math.Round(float64(r.Min+r.Max) / 2))
}

// Industry holds typical SEO and GEO bands for one vertical.
type Industry struct {
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
	SEO  Range  `yaml:"seo" json:"seo"`
	GEO  Range  `yaml:"geo" json:"geo"`
}

// Comparison places a score relative to an industry band.
type Comparison struct {
	Delta   int    `json:"delta"`
	Label   string `json:"label"`
	Status  string `json:"status,omitempty"`
	Average int    `json:"average"`
}

// Benchmarks returns every industry in table order.
func Benchmarks() []Industry {
	out := make([]Industry, len(tables.Industries))
	copy(out, tables.Industries)
	return out
}

// LookupIndustry finds an industry by key.
func LookupIndustry(key string) (Industry, bool) {
	for _, ind := range tables.Industries {
		if ind.Key == key {
			return ind, true
		}
	}
	return Industry{}, false
}

// Summarize compares score with the band midpoint. A nil band yields
// "No benchmark".
func Summarize(score int, band *Range) Comparison {
	if band == nil {
		return Comparison{Label: "No benchmark"}
	}
	avg := band.Average()
	c := Comparison{Delta: score - avg, Label: "Average", Average: avg}
	switch {
	case c.Delta >= 10:
		c.Label = "Well above average"
	case c.Delta >= 5:
		c.Label = "Above average"
	case c.Delta <= -11:
		c.Label, c.Status = "Well below average", "risk"
	case c.Delta <= -6:
		c.Label, c.Status = "Below average", "challenged"
	}
	return c
}
