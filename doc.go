// Package bufy provides the functions and types for managing a personal
// or household budget ledger. It is designed to be local-first and
// auditable, keeping every ledger in a single human-readable file the
// user fully controls.
//
// The core functionalities include:
//   - Ledger Management: accounts, categories and transactions, where
//     every transaction carries both the budgeted plan and, once the
//     money moved, the actual date and amount.
//   - Recurrence: any transaction can become the template of a
//     recurring series, materialized idempotently into concrete
//     transactions as occurrences fall due.
//   - Reporting: window summaries with per-category budget health, and
//     forecasts that merge real transactions with projected recurrence
//     occurrences without double counting.
//   - Simulation: named what-if overlays that never touch the real
//     data until they are applied, and can be compared against the
//     unmodified baseline.
//   - Data Persistence: deterministic, versioned JSON encoding with
//     atomic saves, schema migration, timestamped backups and
//     retention.
//
// This package serves as the foundational logic for the `bufy`
// command-line tool, ensuring that all operations are consistent and
// based on a single source of truth.
package bufy
