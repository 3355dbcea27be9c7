// Package postgresmirror keeps in-memory observable collections in sync
// with a PostgreSQL table.
//
// This package implements a read-side loader over a single mirror table,
// supporting multiple database adapters (pgx, sql.DB, sqlx). Rows are
// read in insert order and their JSONB payloads are decoded into items;
// a refresh replaces the contents of the target collection atomically so
// its observers see exactly one coalesced reset notification.
//
// Key features:
//   - Multiple database adapter support (PGX with optional read replica, SQL, SQLX)
//   - Position-ordered loads with payload validation before decoding
//   - Configurable table names and dual-logger support
//   - Optional metrics and distributed tracing through dependency-free interfaces
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	mirror, _ := postgresmirror.NewMirrorFromPGXPool(db, decodeItem)
//	items, _ := mirror.Load(ctx)
//
//	// Refreshing an observable list (one reset per refresh)
//	list, _ := syncengine.NewObservableList[Item](nil)
//	count, _ := mirror.RefreshInto(ctx, list)
//
//	// With table name and operational logging
//	mirror, _ := postgresmirror.NewMirrorFromPGXPool(
//		db,
//		decodeItem,
//		postgresmirror.WithTableName("inventory_mirror"),
//		postgresmirror.WithLogger(logger),
//	)
package postgresmirror
