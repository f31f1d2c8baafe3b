package store

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ykvlv/report-bot/internal/domain"
)

func intervalToNull(iv *domain.Interval) (start, end sql.NullInt64) {
	if iv == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(iv.Start), Valid: true}, sql.NullInt64{Int64: int64(iv.End), Valid: true}
}

func intervalFromNull(start, end sql.NullInt64) *domain.Interval {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &domain.Interval{Start: int(start.Int64), End: int(end.Int64)}
}

func intervalToPg(iv *domain.Interval) (start, end pgtype.Int4) {
	if iv == nil {
		return pgtype.Int4{}, pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(iv.Start), Valid: true}, pgtype.Int4{Int32: int32(iv.End), Valid: true}
}

func intervalFromPg(start, end pgtype.Int4) *domain.Interval {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &domain.Interval{Start: int(start.Int32), End: int(end.Int32)}
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func validate(p *domain.Preferences) error {
	if p == nil {
		return errNilPreferences
	}
	if p.Interval != nil && !p.Interval.Valid() {
		return domain.ErrInvalidHour
	}
	return nil
}
