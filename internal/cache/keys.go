package cache

import (
	"fmt"

	"github.com/talentrail/talentrail/internal/models"
)

// Key derivation is deterministic: the same query parameters always produce
// the same key, with literal placeholders for absent filter slots so that
// "no filter" and "filter=all" share one entry.

func AvailableJobsKey(f models.JobPostFilter) string {
	typ := orDefault(f.Type, "all")
	level := orDefault(f.Level, "all")
	dept := orDefault(f.Department, "all")
	search := orDefault(f.Search, "none")
	return fmt.Sprintf("availableJobs:%s:%s:%s:%s", typ, level, dept, search)
}

func UserApplicationsKey(userID string) string {
	return "userApplications:" + userID
}

func ApplicationKey(id string) string {
	return "application:" + id
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
