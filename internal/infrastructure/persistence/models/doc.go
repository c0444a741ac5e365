// Package models holds the GORM structs that map domain aggregates onto
// database tables. Domain entities carry no GORM tags; every aggregate has a
// model with ToDomain/FromDomain conversions, and repositories only ever
// touch the models.
//
// One file per bounded context: registry.go (Company, Person), ledger.go
// (Transaction, FiscalBook, Category, TransactionAttachment), snapshot.go
// (BalanceSnapshot). base.go carries the shared identity and version columns.
package models
