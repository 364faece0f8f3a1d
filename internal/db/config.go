package db

import (
	"strconv"

	"char-appraiser/internal/config"
)

// LoadConfig reads config from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["level_window"]; ok {
		cfg.LevelWindow, _ = strconv.Atoi(v)
	}
	if v, ok := m["min_comparables"]; ok {
		cfg.MinComparables, _ = strconv.Atoi(v)
	}
	if v, ok := m["max_comparables"]; ok {
		cfg.MaxComparables, _ = strconv.Atoi(v)
	}
	if v, ok := m["min_similarity"]; ok {
		cfg.MinSimilarity, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["high_confidence_samples"]; ok {
		cfg.HighConfidenceSamples, _ = strconv.Atoi(v)
	}
	if v, ok := m["high_confidence_similarity"]; ok {
		cfg.HighConfidenceSimilarity, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["med_confidence_samples"]; ok {
		cfg.MedConfidenceSamples, _ = strconv.Atoi(v)
	}
	if v, ok := m["med_confidence_similarity"]; ok {
		cfg.MedConfidenceSimilarity, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["item_bonus_cap_fraction"]; ok {
		cfg.ItemBonusCapFraction, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["corpus_cache_ttl_seconds"]; ok {
		cfg.CorpusCacheTTLSeconds, _ = strconv.Atoi(v)
	}
	if v, ok := m["history_retention_days"]; ok {
		cfg.HistoryRetentionDays, _ = strconv.Atoi(v)
	}

	return cfg
}

// SaveConfig writes config to SQLite (upsert all fields).
func (d *DB) SaveConfig(cfg *config.Config) error {
	pairs := map[string]string{
		"level_window":               strconv.Itoa(cfg.LevelWindow),
		"min_comparables":            strconv.Itoa(cfg.MinComparables),
		"max_comparables":            strconv.Itoa(cfg.MaxComparables),
		"min_similarity":             strconv.FormatFloat(cfg.MinSimilarity, 'g', -1, 64),
		"high_confidence_samples":    strconv.Itoa(cfg.HighConfidenceSamples),
		"high_confidence_similarity": strconv.FormatFloat(cfg.HighConfidenceSimilarity, 'g', -1, 64),
		"med_confidence_samples":     strconv.Itoa(cfg.MedConfidenceSamples),
		"med_confidence_similarity":  strconv.FormatFloat(cfg.MedConfidenceSimilarity, 'g', -1, 64),
		"item_bonus_cap_fraction":    strconv.FormatFloat(cfg.ItemBonusCapFraction, 'g', -1, 64),
		"corpus_cache_ttl_seconds":   strconv.Itoa(cfg.CorpusCacheTTLSeconds),
		"history_retention_days":     strconv.Itoa(cfg.HistoryRetentionDays),
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
