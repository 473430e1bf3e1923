package entity

import "time"

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Key   string
	Count int64
}

// CountMap folds grouped rows into a key -> count map.
func CountMap(rows []GroupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] += row.Count
	}
	return out
}

type UserStats struct {
	Total    int64            `json:"total"`
	ByRole   map[string]int64 `json:"byRole"`
	ByStatus map[string]int64 `json:"byStatus"`
}

type ArticleStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	TotalViews int64            `json:"totalViews"`
}

type CommentTotals struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

type CategoryStats struct {
	Total int64 `json:"total"`
}

// SystemStats is the aggregated admin dashboard payload.
type SystemStats struct {
	Users       UserStats     `json:"users"`
	Articles    ArticleStats  `json:"articles"`
	Comments    CommentTotals `json:"comments"`
	Categories  CategoryStats `json:"categories"`
	LastUpdated time.Time     `json:"lastUpdated"`
}
