package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Values arriving here are already canonical (the format stage ran), so
// these converters only bridge string rows to pgtype parameters.
// Anything unparseable becomes NULL rather than an error.

func toText(s string) pgtype.Text {
	return pgtype.Text{String: strings.TrimSpace(s), Valid: true}
}

func toDate(s string) pgtype.Date {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func toNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(strings.TrimSpace(s)); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

func toBool(s string) pgtype.Bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: b, Valid: true}
}

func toInt8(s string) pgtype.Int8 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

func toInt4(s string) pgtype.Int4 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}
