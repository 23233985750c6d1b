package model

import "testing"

func TestDefaultAppConfigMatchesDefaultConfiguration(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultConfiguration()

	if cfg.DefaultPrices != defaults.Prices {
		t.Errorf("prices mismatch: config=%+v defaults=%+v", cfg.DefaultPrices, defaults.Prices)
	}
	if cfg.DefaultCashFlow != defaults.CashFlow {
		t.Errorf("cash flow mismatch: config=%+v defaults=%+v", cfg.DefaultCashFlow, defaults.CashFlow)
	}
	if cfg.DefaultTargetEfficiency != defaults.TargetEfficiency {
		t.Errorf("efficiency mismatch: config=%d defaults=%d", cfg.DefaultTargetEfficiency, defaults.TargetEfficiency)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToConfiguration(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultPrices.Gate = 20000
	cfg.DefaultCashFlow.RentPrice = 95
	cfg.DefaultTargetEfficiency = 90

	c := DefaultConfiguration()
	cfg.ApplyToConfiguration(&c)

	if c.Prices.Gate != 20000 {
		t.Errorf("expected gate price 20000, got %f", c.Prices.Gate)
	}
	if c.CashFlow.RentPrice != 95 {
		t.Errorf("expected rent price 95, got %f", c.CashFlow.RentPrice)
	}
	if c.TargetEfficiency != 85 {
		t.Errorf("expected clamped efficiency 85, got %d", c.TargetEfficiency)
	}
	if c.SystemHeight != 3000 {
		t.Errorf("system height should keep its default, got %f", c.SystemHeight)
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("a.json", 2)
	cfg.AddRecentProject("b.json", 2)
	cfg.AddRecentProject("a.json", 2)
	cfg.AddRecentProject("c.json", 2)

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 entries, got %v", cfg.RecentProjects)
	}
	if cfg.RecentProjects[0] != "c.json" || cfg.RecentProjects[1] != "a.json" {
		t.Errorf("unexpected order %v", cfg.RecentProjects)
	}
}
