// Package models contains GORM persistence models and their mappings to
// domain entities. Persistence concerns (column types, indexes, table names)
// stay here so the domain layer remains storage-agnostic.
package models
