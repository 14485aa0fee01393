package memory

import (
	"sort"

	"subscout-be/internal/repository/specification"
)

// matches interprets the subset of specifications the services actually use.
// The GORM implementations translate the same specs to WHERE clauses; here we
// evaluate them against the flattened row view.
func matches(r row, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if r.id != s.ID {
				return false
			}
		case specification.ByUserID:
			if r.userId != s.UserID {
				return false
			}
		case specification.ByStatus:
			if r.status != s.Status {
				return false
			}
		case specification.ByStatuses:
			found := false
			for _, st := range s.Statuses {
				if r.status == st {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.BySubscriptionID:
			if r.subscriptionId != s.SubscriptionID {
				return false
			}
		case specification.ActiveServiceForUser:
			if r.userId != s.UserID || r.serviceName != s.ServiceName || r.status != "active" {
				return false
			}
		case specification.CreatedSince:
			if r.createdAt.Before(s.Since) {
				return false
			}
		case specification.OrderBy, specification.Pagination:
			// Post-filter concerns, handled by arrange.
		}
	}
	return true
}

// arrange applies OrderBy (on the created-at column) and Pagination to an
// already-filtered result set of indexes into rows.
func arrange(rows []row, specs []specification.Specification) []row {
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok {
			sort.SliceStable(rows, func(i, j int) bool {
				if s.Desc {
					return rows[i].createdAt.After(rows[j].createdAt)
				}
				return rows[i].createdAt.Before(rows[j].createdAt)
			})
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.Pagination); ok {
			if s.Offset >= len(rows) {
				return nil
			}
			rows = rows[s.Offset:]
			if s.Limit > 0 && s.Limit < len(rows) {
				rows = rows[:s.Limit]
			}
		}
	}
	return rows
}
