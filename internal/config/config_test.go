package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Seed != 1 {
		t.Errorf("Seed = %d, want default 1", cfg.Engine.Seed)
	}
	if cfg.Engine.MetricSampleCap != 100_000 {
		t.Errorf("MetricSampleCap = %d, want 100000", cfg.Engine.MetricSampleCap)
	}
	if cfg.Engine.AnomalyFitCap != 50_000 {
		t.Errorf("AnomalyFitCap = %d, want 50000", cfg.Engine.AnomalyFitCap)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAINSIGHT_SEED", "99")
	t.Setenv("CHAINSIGHT_ANOMALY_TREES", "50")
	t.Setenv("CHAINSIGHT_ANOMALY_CONTAMINATION", "0.05")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Engine.Seed)
	}
	if cfg.Engine.AnomalyTrees != 50 {
		t.Errorf("AnomalyTrees = %d, want 50", cfg.Engine.AnomalyTrees)
	}
	if cfg.Engine.AnomalyContamination != 0.05 {
		t.Errorf("AnomalyContamination = %v, want 0.05", cfg.Engine.AnomalyContamination)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CHAINSIGHT_ANOMALY_TREES", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.AnomalyTrees != 100 {
		t.Errorf("AnomalyTrees = %d, want default 100 on parse failure", cfg.Engine.AnomalyTrees)
	}
}
