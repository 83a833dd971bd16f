package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Steward store (SQLite).
var Migrations = migrate.NewGroup("steward")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_org_units",
			Version: "20250301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_org_units (
    id                  TEXT PRIMARY KEY,
    tenant_id           TEXT NOT NULL,
    app_id              TEXT NOT NULL DEFAULT '',
    parent_id           TEXT,
    name                TEXT NOT NULL,
    type                TEXT NOT NULL DEFAULT '',
    inheritance_blocks  TEXT NOT NULL DEFAULT '',
    metadata            TEXT NOT NULL DEFAULT '{}',
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_steward_units_tenant ON steward_org_units (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_units_parent ON steward_org_units (parent_id);
CREATE INDEX IF NOT EXISTS idx_steward_units_type ON steward_org_units (tenant_id, type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_org_units`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_org_closure",
			Version: "20250301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_org_closure (
    ancestor_id     TEXT NOT NULL,
    descendant_id   TEXT NOT NULL,
    tenant_id       TEXT NOT NULL,
    depth           INTEGER NOT NULL,

    PRIMARY KEY (ancestor_id, descendant_id)
);

CREATE INDEX IF NOT EXISTS idx_steward_closure_descendant ON steward_org_closure (tenant_id, descendant_id, depth);
CREATE INDEX IF NOT EXISTS idx_steward_closure_ancestor ON steward_org_closure (tenant_id, ancestor_id, depth);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_org_closure`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_scopes",
			Version: "20250301000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_scopes (
    id                   TEXT PRIMARY KEY,
    tenant_id            TEXT NOT NULL,
    app_id               TEXT NOT NULL DEFAULT '',
    user_id              TEXT NOT NULL,
    org_unit_id          TEXT NOT NULL,
    include_descendants  INTEGER NOT NULL DEFAULT 0,
    min_viewable_rank    INTEGER,
    max_viewable_rank    INTEGER,
    min_assignable_rank  INTEGER,
    max_assignable_rank  INTEGER,
    allow_self_access    INTEGER NOT NULL DEFAULT 0,
    granted_by           TEXT NOT NULL DEFAULT '',
    reason               TEXT NOT NULL DEFAULT '',
    metadata             TEXT NOT NULL DEFAULT '{}',
    created_at           TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_steward_scopes_user ON steward_scopes (tenant_id, user_id);
CREATE INDEX IF NOT EXISTS idx_steward_scopes_unit ON steward_scopes (org_unit_id);
CREATE INDEX IF NOT EXISTS idx_steward_scopes_user_unit ON steward_scopes (tenant_id, user_id, org_unit_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_scopes`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_employees",
			Version: "20250301000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_employees (
    id                TEXT PRIMARY KEY,
    tenant_id         TEXT NOT NULL,
    app_id            TEXT NOT NULL DEFAULT '',
    user_id           TEXT NOT NULL,
    org_unit_id       TEXT NOT NULL,
    display_name      TEXT NOT NULL DEFAULT '',
    management_level  INTEGER NOT NULL DEFAULT 0,
    metadata          TEXT NOT NULL DEFAULT '{}',
    created_at        TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at        TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_steward_employees_unit ON steward_employees (org_unit_id);
CREATE INDEX IF NOT EXISTS idx_steward_employees_rank ON steward_employees (tenant_id, management_level);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_employees`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20250301000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_decision_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    app_id          TEXT NOT NULL DEFAULT '',
    user_id         TEXT NOT NULL,
    permission      TEXT NOT NULL,
    org_unit_id     TEXT NOT NULL,
    employee_id     TEXT,
    verdict         TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    INTEGER NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_steward_dlogs_tenant ON steward_decision_logs (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_dlogs_user ON steward_decision_logs (tenant_id, user_id);
CREATE INDEX IF NOT EXISTS idx_steward_dlogs_verdict ON steward_decision_logs (tenant_id, verdict);
CREATE INDEX IF NOT EXISTS idx_steward_dlogs_created ON steward_decision_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_decision_logs`)
				return err
			},
		},
	)
}
