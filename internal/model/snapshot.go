package model

import "time"

// MenuSnapshot records one successful menu fetch.
type MenuSnapshot struct {
	ID            int64     `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	Title         string    `json:"title"`
	Digest        string    `json:"digest"`
	CategoryCount int       `json:"category_count"`
	ItemCount     int       `json:"item_count"`
	FetchedAt     time.Time `json:"fetched_at"`
}
