package telemetry

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type startTimeKey struct{ plugin string }

// registerTimed registers before/after callbacks on every GORM processor.
// The before hook stamps the statement context with a start time that after
// receives as the elapsed duration together with the SQL verb.
func registerTimed(db *gorm.DB, plugin string, after func(db *gorm.DB, operation string, elapsed time.Duration)) error {
	key := startTimeKey{plugin: plugin}
	before := func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, key, time.Now())
	}
	afterFor := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			var elapsed time.Duration
			if db.Statement.Context != nil {
				if start, ok := db.Statement.Context.Value(key).(time.Time); ok {
					elapsed = time.Since(start)
				}
			}
			op := operation
			if op == "" {
				op = detectOperationType(db.Statement.SQL.String())
			}
			after(db, op, elapsed)
		}
	}

	hooks := []struct {
		stage     string
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create", "INSERT", db.Callback().Create().Before("gorm:create").Register, db.Callback().Create().After("gorm:create").Register},
		{"query", "SELECT", db.Callback().Query().Before("gorm:query").Register, db.Callback().Query().After("gorm:query").Register},
		{"update", "UPDATE", db.Callback().Update().Before("gorm:update").Register, db.Callback().Update().After("gorm:update").Register},
		{"delete", "DELETE", db.Callback().Delete().Before("gorm:delete").Register, db.Callback().Delete().After("gorm:delete").Register},
		{"row", "", db.Callback().Row().Before("gorm:row").Register, db.Callback().Row().After("gorm:row").Register},
		{"raw", "", db.Callback().Raw().Before("gorm:raw").Register, db.Callback().Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before(plugin+":before_"+h.stage, before); err != nil {
			return err
		}
		if err := h.after(plugin+":after_"+h.stage, afterFor(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

// detectOperationType returns the SQL verb of a raw statement
func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}
