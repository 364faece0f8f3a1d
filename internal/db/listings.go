package db

import (
	"database/sql"
	"fmt"

	"char-appraiser/internal/engine"
)

// InsertSoldListing records a completed auction in the historical corpus.
func (d *DB) InsertSoldListing(l engine.SoldListing) (int64, error) {
	res, err := d.sql.Exec(`
		INSERT INTO sold_listings
			(name, world, vocation, level, sold_price,
			 magic_level, fist, club, sword, axe, distance, shielding,
			 charm_points, soulwar, primal, falcon, store_item_count,
			 display_items, sold_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.Name, l.World, l.Vocation, l.Level, l.SoldPrice,
		l.MagicLevel, l.Fist, l.Club, l.Sword, l.Axe, l.Distance, l.Shielding,
		l.CharmPoints, l.Soulwar, l.Primal, l.Falcon, l.StoreItemCount,
		l.DisplayItemsRaw, l.SoldAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert sold listing: %w", err)
	}
	return res.LastInsertId()
}

const soldListingColumns = `id, name, world, vocation, level, sold_price,
	magic_level, fist, club, sword, axe, distance, shielding,
	charm_points, soulwar, primal, falcon, store_item_count,
	display_items, sold_at`

// SoldCorpus is the engine's bulk-read contract: every sold listing with a
// positive sale price, a known level, and a known vocation. A failure here
// means the whole appraisal batch cannot proceed.
func (d *DB) SoldCorpus() ([]engine.SoldListing, error) {
	rows, err := d.sql.Query(`
		SELECT ` + soldListingColumns + `
		FROM sold_listings
		WHERE sold_price > 0 AND level > 0 AND vocation != ''`)
	if err != nil {
		return nil, fmt.Errorf("sold corpus: %w", err)
	}
	defer rows.Close()
	return scanSoldListings(rows)
}

// RecentSoldListings returns the most recently recorded sales.
func (d *DB) RecentSoldListings(limit int) ([]engine.SoldListing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(`
		SELECT `+soldListingColumns+`
		FROM sold_listings
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sold listings: %w", err)
	}
	defer rows.Close()
	return scanSoldListings(rows)
}

func scanSoldListings(rows *sql.Rows) ([]engine.SoldListing, error) {
	var out []engine.SoldListing
	for rows.Next() {
		var l engine.SoldListing
		var magic, fist, club, sword, axe, distance, shielding sql.NullInt64
		var charms, store sql.NullInt64
		var soulwar, primal, falcon sql.NullBool
		if err := rows.Scan(
			&l.ID, &l.Name, &l.World, &l.Vocation, &l.Level, &l.SoldPrice,
			&magic, &fist, &club, &sword, &axe, &distance, &shielding,
			&charms, &soulwar, &primal, &falcon, &store,
			&l.DisplayItemsRaw, &l.SoldAt,
		); err != nil {
			return nil, fmt.Errorf("scan sold listing: %w", err)
		}
		l.MagicLevel = nullableInt(magic)
		l.Fist = nullableInt(fist)
		l.Club = nullableInt(club)
		l.Sword = nullableInt(sword)
		l.Axe = nullableInt(axe)
		l.Distance = nullableInt(distance)
		l.Shielding = nullableInt(shielding)
		l.CharmPoints = nullableInt(charms)
		l.StoreItemCount = nullableInt(store)
		l.Soulwar = nullableBool(soulwar)
		l.Primal = nullableBool(primal)
		l.Falcon = nullableBool(falcon)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sold listings: %w", err)
	}
	return out, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
