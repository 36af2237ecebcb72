// SPDX-License-Identifier: MPL-2.0

package builtin

import "dcg-cli/internal/packs"

func postgresqlPack() *packs.Pack {
	return &packs.Pack{
		ID:          "database.postgresql",
		Name:        "PostgreSQL",
		Version:     "1.0.0",
		Description: "Protects against destructive PostgreSQL operations",
		Keywords:    []string{"psql", "dropdb", "pg_restore", "DROP", "TRUNCATE", "drop", "truncate"},
		SafePatterns: []packs.SafePattern{
			{Name: "psql-list", Pattern: `\bpsql\s+(?:\S+\s+)*(?:-l|--list)\b`},
			{Name: "pg-dump", Pattern: `\bpg_dump\b`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "dropdb",
				Pattern:     `\bdropdb\s+`,
				Severity:    packs.SeverityCritical,
				Reason:      "dropdb deletes an entire database.",
				Explanation: "dropdb removes the database and every table in it. Only a restore from backup brings it back.",
				Suggestion:  "pg_dump first",
			},
			{
				Name:        "drop-database",
				Pattern:     `(?i)\bDROP\s+DATABASE\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "DROP DATABASE deletes an entire database.",
				Explanation: "DROP DATABASE is immediate and unlogged from the application's point of view; all tables, indexes, and data vanish.",
				Suggestion:  "pg_dump first",
			},
			{
				Name:        "drop-table",
				Pattern:     `(?i)\bDROP\s+TABLE\b(?!.*\bIF\s+EXISTS\s+\w+_(?:tmp|temp|test)\b)`,
				Severity:    packs.SeverityHigh,
				Reason:      "DROP TABLE deletes the table and its data.",
				Explanation: "Dropping a table discards its rows, indexes, and dependent views.",
			},
			{
				Name:        "truncate-table",
				Pattern:     `(?i)\bTRUNCATE\s+(?:TABLE\s+)?\w`,
				Severity:    packs.SeverityHigh,
				Reason:      "TRUNCATE removes all rows immediately.",
				Explanation: "TRUNCATE cannot be filtered and fires no per-row triggers; the data is simply gone.",
				Suggestion:  "DELETE ... WHERE with a transaction",
			},
			{
				Name:        "delete-no-where",
				Pattern:     `(?i)\bDELETE\s+FROM\s+\S+\s*(?:;|$|")`,
				Severity:    packs.SeverityHigh,
				Reason:      "DELETE without WHERE removes every row.",
				Explanation: "An unqualified DELETE scans and removes the whole table.",
				Suggestion:  "add a WHERE clause, or wrap in BEGIN/ROLLBACK to test",
			},
		},
	}
}

func mysqlPack() *packs.Pack {
	return &packs.Pack{
		ID:          "database.mysql",
		Name:        "MySQL",
		Version:     "1.0.0",
		Description: "Protects against destructive MySQL operations",
		Keywords:    []string{"mysql", "mysqladmin", "DROP", "TRUNCATE", "drop", "truncate"},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "mysqladmin-drop",
				Pattern:     `\bmysqladmin\s+(?:\S+\s+)*drop\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "mysqladmin drop deletes an entire database.",
				Explanation: "The drop subcommand removes the named schema and all its tables.",
			},
			{
				Name:        "drop-database",
				Pattern:     `(?i)\bmysql\b.*\bDROP\s+(?:DATABASE|SCHEMA)\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "DROP DATABASE deletes an entire database.",
				Explanation: "All tables and data in the schema are removed.",
				Suggestion:  "mysqldump first",
			},
		},
	}
}

func redisPack() *packs.Pack {
	return &packs.Pack{
		ID:          "database.redis",
		Name:        "Redis",
		Version:     "1.0.0",
		Description: "Protects against Redis data-wiping commands",
		Keywords:    []string{"redis-cli", "FLUSHALL", "FLUSHDB", "flushall", "flushdb"},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "flushall",
				Pattern:     `(?i)\bflushall\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "FLUSHALL erases every key in every Redis database.",
				Explanation: "FLUSHALL drops all data in the instance, across all logical databases, instantly.",
			},
			{
				Name:        "flushdb",
				Pattern:     `(?i)\bflushdb\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "FLUSHDB erases every key in the selected database.",
				Explanation: "FLUSHDB drops all keys in the current logical database with no confirmation.",
			},
			{
				Name:        "redis-config-resetstat",
				Pattern:     `\bredis-cli\s+(?:\S+\s+)*debug\s+(?:flushall|reload)\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "redis-cli debug subcommands can wipe or reload the dataset.",
				Explanation: "DEBUG FLUSHALL bypasses persistence settings before wiping.",
			},
		},
	}
}

func mongodbPack() *packs.Pack {
	return &packs.Pack{
		ID:          "database.mongodb",
		Name:        "MongoDB",
		Version:     "1.0.0",
		Description: "Protects against destructive MongoDB shell operations",
		Keywords:    []string{"mongo", "mongosh", "dropDatabase", "deleteMany"},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "drop-database",
				Pattern:     `\bdropDatabase\s*\(`,
				Severity:    packs.SeverityCritical,
				Reason:      "db.dropDatabase() deletes the current database.",
				Explanation: "Every collection and document in the database is removed.",
			},
			{
				Name:        "collection-drop",
				Pattern:     `\bdb\.\w+\.drop\s*\(`,
				Severity:    packs.SeverityHigh,
				Reason:      "collection.drop() deletes the collection and its documents.",
				Explanation: "Dropping a collection also removes its indexes; restoring requires a dump.",
			},
			{
				Name:        "delete-many-all",
				Pattern:     `\bdeleteMany\s*\(\s*\{\s*\}\s*\)`,
				Severity:    packs.SeverityHigh,
				Reason:      "deleteMany({}) removes every document in the collection.",
				Explanation: "An empty filter matches all documents.",
			},
		},
	}
}
