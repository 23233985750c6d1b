package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultPrices           PriceList      `json:"default_prices"`
	DefaultCashFlow         CashFlowParams `json:"default_cash_flow"`
	DefaultTargetEfficiency int            `json:"default_target_efficiency"`
	DefaultSystemHeight     float64        `json:"default_system_height"`
	DefaultCorridorWidth    float64        `json:"default_corridor_width"`

	// Application preferences
	OutputDir      string   `json:"output_dir"` // where CLI exports land when no path is given
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the values
// of DefaultConfiguration().
func DefaultAppConfig() AppConfig {
	defaults := DefaultConfiguration()
	return AppConfig{
		DefaultPrices:           defaults.Prices,
		DefaultCashFlow:         defaults.CashFlow,
		DefaultTargetEfficiency: defaults.TargetEfficiency,
		DefaultSystemHeight:     defaults.SystemHeight,
		DefaultCorridorWidth:    defaults.CorridorWidth,
		OutputDir:               ".",
		RecentProjects:          []string{},
	}
}

// ApplyToConfiguration copies the defaults into a Configuration.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToConfiguration(cfg *Configuration) {
	cfg.Prices = c.DefaultPrices
	cfg.CashFlow = c.DefaultCashFlow
	if c.DefaultTargetEfficiency != 0 {
		cfg.TargetEfficiency = ClampEfficiency(c.DefaultTargetEfficiency)
	}
	if c.DefaultSystemHeight > 0 {
		cfg.SystemHeight = c.DefaultSystemHeight
	}
	if c.DefaultCorridorWidth > 0 {
		cfg.CorridorWidth = c.DefaultCorridorWidth
	}
}

// AddRecentProject moves path to the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProject(path string, max int) {
	list := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			list = append(list, p)
		}
	}
	if max > 0 && len(list) > max {
		list = list[:max]
	}
	c.RecentProjects = list
}
