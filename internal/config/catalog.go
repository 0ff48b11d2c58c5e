package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/econlab/econpipe/pkg/types"
)

// DefaultCatalog returns the built-in indicator set tracked by the pipeline.
func DefaultCatalog() types.Catalog {
	return types.Catalog{
		{Series: "UNRATE", Title: "Unemployment Rate"},
		{Series: "CPIAUCSL", Title: "Consumer Price Index"},
		{Series: "GDP", Title: "Gross Domestic Product"},
		{Series: "FEDFUNDS", Title: "Federal Funds Rate"},
		{Series: "DGS10", Title: "10-Year Treasury Rate"},
	}
}

type catalogFile struct {
	Indicators []types.IndicatorSpec `yaml:"indicators"`
}

// LoadCatalog reads an indicator catalog from a YAML file of the form:
//
//	indicators:
//	  - series: UNRATE
//	    title: Unemployment Rate
func LoadCatalog(path string) (types.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(cf.Indicators) == 0 {
		return nil, fmt.Errorf("catalog has no indicators")
	}

	seen := make(map[string]bool, len(cf.Indicators))
	for i, ind := range cf.Indicators {
		if ind.Series == "" {
			return nil, fmt.Errorf("catalog entry %d: series is required", i)
		}
		if ind.Title == "" {
			return nil, fmt.Errorf("catalog entry %d (%s): title is required", i, ind.Series)
		}
		if seen[ind.Series] {
			return nil, fmt.Errorf("catalog entry %d: duplicate series %s", i, ind.Series)
		}
		seen[ind.Series] = true
	}

	return cf.Indicators, nil
}

// ResolveCatalog returns the catalog from path when set, the default otherwise.
func ResolveCatalog(path string) (types.Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(path)
}
