package models

import "time"

// Health is the liveness report of the service.
type Health struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	TotalCompanies int       `json:"totalCompanies"`
	CatalogVersion uint64    `json:"catalogVersion"`
}
