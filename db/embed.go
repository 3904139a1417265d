// Package db provides the embedded schema for the PostgreSQL document backend.
package db

import _ "embed"

// Schema contains the DDL for the documents table.
//
//go:embed migrations/001_schema.sql
var Schema string
